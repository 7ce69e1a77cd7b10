package rationale

import (
	"regexp"
	"strings"

	"kdigo-rationale-server/internal/prompt"
)

// Placeholder stands in for an empty completion.
const Placeholder = "No explanation generated."

// Fence lines may carry a language tag, e.g. ```text.
var fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_+-]*[ \t]*$\n?")

// Sanitize strips code-fence delimiters, falls back to the placeholder for
// empty text and guarantees the closing disclaimer sentence.
func Sanitize(raw string) string {
	text := fenceLine.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)
	if text == "" {
		text = Placeholder
	}
	return ensureDisclaimer(text)
}

func ensureDisclaimer(text string) string {
	if strings.Contains(text, prompt.Disclaimer) {
		return text
	}
	return text + "\n\n" + prompt.Disclaimer
}
