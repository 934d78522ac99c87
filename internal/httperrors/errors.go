// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns network failures (translation endpoint, database
// host) into user-friendly terminal messages.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Category is the class of a network failure.
type Category string

const (
	Timeout           Category = "timeout"
	DNS               Category = "dns"
	ConnectionRefused Category = "connection_refused"
	TLS               Category = "tls"
	Unauthorized      Category = "unauthorized"
	RateLimited       Category = "rate_limited"
	Server            Category = "server"
	Generic           Category = "generic"
)

// Classify inspects err and returns its category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return ""
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, " 401 ") || strings.Contains(lower, " 403 ") || strings.Contains(lower, "invalid api key"):
		return Unauthorized
	case strings.Contains(lower, " 429 ") || strings.Contains(lower, "rate limit"):
		return RateLimited
	case isServerError(lower):
		return Server
	}
	return Generic
}

// FormatNetworkError prints a troubleshooting message for err and returns it
// wrapped. host names the remote side ("api.groq.com", "db.internal:5432"),
// action describes what was being done ("generating SQL").
func FormatNetworkError(err error, host, action string) error {
	if err == nil {
		return nil
	}
	displayErrorMessage(err, host, action)
	return fmt.Errorf("network error: %w", err)
}

func displayErrorMessage(err error, host, action string) {
	if host == "" {
		host = "the server"
	}
	switch Classify(err) {
	case Timeout:
		pterm.Printf("⏱️  Timed out while %s\n\n", action)
		pterm.Printf("%s took too long to respond. This could mean:\n", host)
		pterm.Println("  • Slow or unstable network connection")
		pterm.Println("  • The service is under heavy load")
		pterm.Println("  • A firewall is dropping the connection")
	case DNS:
		pterm.Printf("🌐 Cannot resolve %s while %s\n\n", host, action)
		pterm.Println("Please check:")
		pterm.Println("  • The host name is spelled correctly")
		pterm.Println("  • Your network and DNS settings")
	case ConnectionRefused:
		pterm.Printf("🚫 Connection refused by %s while %s\n\n", host, action)
		pterm.Println("Nothing is listening on that address. Check the host, the port")
		pterm.Println("and that the service is running.")
	case TLS:
		pterm.Printf("🔒 Secure connection to %s failed while %s\n\n", host, action)
		pterm.Println("Try:")
		pterm.Println("  • Checking your system date and time")
		pterm.Println("  • Verifying proxy settings")
		pterm.Println("  • Adjusting sslmode / tls in the connection string")
	case Unauthorized:
		pterm.Printf("🔑 %s rejected the credentials while %s\n\n", host, action)
		pterm.Println("Store a valid key with 'askdb connect --llm-key' or set ASKDB_LLM_API_KEY.")
	case RateLimited:
		pterm.Printf("⚠️  %s is rate limiting requests while %s\n\n", host, action)
		pterm.Println("Wait a moment and try again.")
	case Server:
		pterm.Printf("⚠️  %s returned a server error while %s\n\n", host, action)
		pterm.Println("The problem is on the remote side. Please try again in a few minutes.")
	default:
		pterm.Printf("❌ Cannot reach %s while %s\n\n", host, action)
		pterm.Println("Please check your network connection and firewall settings.")
		details := err.Error()
		if len(details) > 100 {
			details = details[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", details)
	}
	pterm.Println()
}

func isTimeoutError(err error) bool {
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func isServerError(lower string) bool {
	for _, s := range []string{" 500 ", " 502 ", " 503 ", " 504 ",
		"internal server error", "bad gateway", "service unavailable", "gateway timeout"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
