package auth

import "strings"

// RequireAuth reports whether path needs authentication. It returns false
// only when path matches an excluded pattern:
//   - "/a/b*" matches any path starting with "/a/b"
//   - "/a/b" or "/a/b/" matches "/a/b", "/a/b/" and anything under "/a/b/"
//
// An empty path or an empty excluded list always requires authentication.
func RequireAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}
	p := trimSlash(path)
	for _, ex := range excluded {
		if ex == "" {
			continue
		}
		if prefix, ok := strings.CutSuffix(ex, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return false
			}
			continue
		}
		e := trimSlash(ex)
		if p == e || strings.HasPrefix(p, e+"/") {
			return false
		}
	}
	return true
}

// trimSlash removes a single trailing slash, keeping "/" intact.
func trimSlash(s string) string {
	if len(s) > 1 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
