package translator

import (
	"fmt"
	"strings"
)

const systemPrompt = "You translate questions about a relational database into a single SQL statement. " +
	"Answer with SQL only, without explanations."

// Prompt builds the user message sent to the model.
func Prompt(question, schemaText, dialectName string) string {
	var b strings.Builder
	b.WriteString("You are an expert SQL assistant.")
	if d := strings.TrimSpace(dialectName); d != "" {
		fmt.Fprintf(&b, " Write SQL for a %s database.", d)
	}
	b.WriteString("\n\n")
	if s := strings.TrimSpace(schemaText); s != "" {
		b.WriteString("Database schema:\n")
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(question))
	b.WriteString("Return only the SQL query.")
	return b.String()
}
