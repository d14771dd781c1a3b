package agent

// Preview shortens text to at most limit runes, marking the cut with "...".
func Preview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
