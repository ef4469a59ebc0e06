package generation

import "strings"

// StripCodeFence removes a single surrounding ``` fence, with or without a
// language tag, that models often wrap markdown answers in.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if !strings.ContainsAny(tag, " \t") {
			body = body[nl+1:]
		}
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}
