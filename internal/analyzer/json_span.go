package analyzer

import "strings"

// ExtractJSONObject returns the first balanced {...} span in text, skipping braces that
// appear inside JSON strings. When the object is never closed (a truncated reply) it falls
// back to the widest span between the first '{' and the last '}'.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	end := strings.LastIndexByte(text, '}')
	if end > start {
		return text[start : end+1], true
	}
	return "", false
}
