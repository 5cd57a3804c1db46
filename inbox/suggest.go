package inbox

import "strings"

// SuggestionSeparator delimits the questions in the suggestion proxy's output.
const SuggestionSeparator = "||"

// SplitSuggestions turns proxy output into trimmed, non-empty questions.
func SplitSuggestions(text string) []string {
	var out []string
	for _, q := range strings.Split(text, SuggestionSeparator) {
		q = strings.Trim(strings.TrimSpace(q), "'\"")
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}
