package llm

import "strings"

// stripCodeFence removes a leading/trailing fenced code block around the
// model output, including a leading language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" up to the first newline. A fence with
	// no newline (single-line output) keeps the payload intact.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		tag := strings.TrimSpace(s[:idx])
		if tag == "" || !strings.ContainsAny(tag, "{[\"") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// escapeNewlinesInStrings replaces raw newline characters that occur inside
// quoted JSON strings with their escaped forms. Models asked for single-line
// JSON still emit literal newlines inside draft text often enough that one
// repair pass pays for itself. Structural whitespace outside strings is left
// alone.
func escapeNewlinesInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if !inString {
			if r == '"' {
				inString = true
			}
			b.WriteRune(r)
			continue
		}
		if escaped {
			escaped = false
			b.WriteRune(r)
			continue
		}
		switch r {
		case '\\':
			escaped = true
			b.WriteRune(r)
		case '"':
			inString = false
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
