package services

import "strings"

// extractJSON pulls the outermost JSON object or array out of a model
// response, tolerating markdown fences and surrounding prose.
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	hasObj := startObj != -1 && endObj > startObj
	hasArr := startArr != -1 && endArr > startArr

	switch {
	case hasObj && hasArr:
		if startArr < startObj {
			return text[startArr : endArr+1]
		}
		return text[startObj : endObj+1]
	case hasObj:
		return text[startObj : endObj+1]
	case hasArr:
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}
