package utils

import "strings"

// ExtractPackageFromType returns the package qualifier of a type expression,
// e.g. "auth" for "*auth.Manager" or "[]models.User", and "" for local or
// builtin types. For maps the value type is inspected.
func ExtractPackageFromType(typeStr string) string {
	typeStr = strings.TrimSpace(typeStr)
	for {
		switch {
		case strings.HasPrefix(typeStr, "*"):
			typeStr = typeStr[1:]
		case strings.HasPrefix(typeStr, "[]"):
			typeStr = typeStr[2:]
		case strings.HasPrefix(typeStr, "..."):
			typeStr = typeStr[3:]
		case strings.HasPrefix(typeStr, "["):
			end := strings.IndexByte(typeStr, ']')
			if end < 0 {
				return ""
			}
			typeStr = typeStr[end+1:]
		case strings.HasPrefix(typeStr, "map["):
			end := matchingBracket(typeStr, len("map"))
			if end < 0 {
				return ""
			}
			typeStr = typeStr[end+1:]
		default:
			if generic := strings.IndexByte(typeStr, '['); generic > 0 {
				typeStr = typeStr[:generic]
			}
			if dot := strings.IndexByte(typeStr, '.'); dot > 0 {
				return typeStr[:dot]
			}
			return ""
		}
	}
}

// matchingBracket returns the index of the ']' closing the '[' at open
func matchingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
