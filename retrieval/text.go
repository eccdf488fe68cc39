package retrieval

import "strings"

// containsAnyKeyword reports whether content contains at least one of the
// keywords, case-insensitively. Blank keywords are ignored.
func containsAnyKeyword(content string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}

	lowered := strings.ToLower(content)
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
