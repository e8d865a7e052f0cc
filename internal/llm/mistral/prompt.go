package mistral

import "fmt"

// formatPrompt prepends plain-text formatting instructions so responses use
// section underlines instead of markdown symbols.
func formatPrompt(prompt string) string {
	return fmt.Sprintf(`Please provide your response in the following format, without using markdown symbols or hashtags:

For main sections:
Title
===========

For subsections:
Subsection: Your text here

For example:
Key Points
===========

Diverse Sources: The document includes a wide range of sources...

Geographical Scope: The references span multiple regions...

Your response:
%s`, prompt)
}
