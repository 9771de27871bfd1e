package agent

import "fmt"

// Refusal is the only answer allowed when the fact-sheet does not hold the answer.
const Refusal = "Sorry can not find the answer"

// SystemPrompt is the instruction given to the model before any question.
const SystemPrompt = `You are a strictly grounded Financial Assistant.
You have been given a DATA REPORT.

RULES:
1. Answer the user's question using ONLY the DATA REPORT provided below.
2. If the answer is found, answer concisely.
3. CRITICAL: If the answer is NOT in the DATA REPORT, you must output EXACTLY:
   "` + Refusal + `"
`

// UserPrompt combines the fact-sheet and the user's question verbatim.
func UserPrompt(factSheet, question string) string {
	return fmt.Sprintf("DATA REPORT:\n%s\n\nUSER QUESTION: \n%s\n", factSheet, question)
}
