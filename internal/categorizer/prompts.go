package categorizer

import (
	"strings"
)

// buildClassificationPrompt asks for a confidence score per candidate label,
// which is how a zero-shot classifier reports its ranking.
func buildClassificationPrompt(description string, labels []string) string {
	var b strings.Builder
	b.WriteString("You are a zero-shot text classifier for personal finance transactions.\n\n")
	b.WriteString("Task:\n")
	b.WriteString("- Score how well the transaction description fits EACH candidate label.\n")
	b.WriteString("- Scores are numbers between 0 and 1 and should sum to 1.\n")
	b.WriteString("- Order the output from the highest score to the lowest.\n")
	b.WriteString("- Use ONLY the candidate labels below, spelled exactly as shown.\n\n")

	b.WriteString("Candidate labels:\n")
	for _, l := range labels {
		b.WriteString("  - " + l + "\n")
	}

	b.WriteString("\nTransaction description:\n")
	b.WriteString("  " + strings.TrimSpace(description) + "\n\n")

	b.WriteString("Return ONLY valid raw JSON of the form {\"scores\": [{\"label\": \"...\", \"score\": 0.0}]}.\n")
	b.WriteString("Do NOT wrap the response in code fences.\n")
	return b.String()
}
