// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "askdb/cli/internal/errors"
)

// Environment variables holding an administrator account.
const (
	EnvAdminUser     = "ASKDB_ADMIN_USER"
	EnvAdminPassword = "ASKDB_ADMIN_PASSWORD"
)

// Verifier checks administrator credentials.
type Verifier interface {
	Verify(user, password string) error
}

// AdminStore loads the stored administrator account. *keychain.Manager implements it.
type AdminStore interface {
	LoadAdmin() (user string, hash []byte, err error)
}

// Authenticator accepts the administrator configured in the environment or,
// failing that, the one stored as a bcrypt hash in the keychain.
type Authenticator struct {
	envUser     string
	envPassword string
	store       AdminStore
}

// NewAuthenticator reads the environment account and falls back to store, which may be nil.
func NewAuthenticator(store AdminStore) *Authenticator {
	return &Authenticator{
		envUser:     os.Getenv(EnvAdminUser),
		envPassword: os.Getenv(EnvAdminPassword),
		store:       store,
	}
}

var errInvalidCredentials = apperrors.New(apperrors.NotAuthorized, "invalid administrator credentials")

// Verify returns nil when user and password match an administrator account.
func (a *Authenticator) Verify(user, password string) error {
	if a.envUser != "" && a.envPassword != "" {
		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.envUser)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.envPassword)) == 1
		if userOK && passOK {
			return nil
		}
		if a.store == nil {
			return errInvalidCredentials
		}
	}

	if a.store == nil {
		return apperrors.New(apperrors.NotAuthorized,
			"no administrator account configured; run 'askdb admin init' or set "+EnvAdminUser+" and "+EnvAdminPassword)
	}
	storedUser, hash, err := a.store.LoadAdmin()
	if err != nil {
		if a.envUser != "" {
			return errInvalidCredentials
		}
		slog.Debug("admin account unavailable", "error", err)
		return apperrors.Wrap(apperrors.NotAuthorized,
			"no administrator account configured; run 'askdb admin init' or set "+EnvAdminUser+" and "+EnvAdminPassword, err)
	}
	if subtle.ConstantTimeCompare([]byte(user), []byte(storedUser)) != 1 {
		// Still spend the bcrypt cost so timing does not reveal the user name.
		_ = bcrypt.CompareHashAndPassword(hash, []byte(password))
		return errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return errInvalidCredentials
		}
		return apperrors.Wrap(apperrors.NotAuthorized, "stored administrator hash is unreadable", err)
	}
	return nil
}

// HashPassword returns the bcrypt hash stored by `askdb admin init`.
func HashPassword(password string) ([]byte, error) {
	if len(strings.TrimSpace(password)) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
