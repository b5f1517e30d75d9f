package harness

import "fmt"

// FormatSummary renders the grader-facing result line. The wording and
// punctuation are a wire contract: an external grader parses this line
// byte for byte.
func FormatSummary(passed, total, coverage int) string {
	return fmt.Sprintf("%d/%d test cases passed. %d%% line coverage achieved.", passed, total, coverage)
}
