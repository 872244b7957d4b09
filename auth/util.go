package auth

import (
	"net/http"
	"net/url"
	"strings"
)

func discardf(string, ...any) {}

func logfOrDiscard(f func(format string, args ...any)) func(string, ...any) {
	if f == nil {
		return discardf
	}
	return f
}

// authorizationHeader returns the Authorization header, if present.
func authorizationHeader(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Header["Authorization"]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// SameOrigin performs a basic same-origin check using the Origin header.
// If Origin is absent (e.g., non-CORS same-site requests), it returns true
// for safe methods and falls back to Referer for unsafe ones.
// It compares the Host in Origin with r.Host (scheme is ignored).
func SameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin != "" {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	if isUnsafeMethod(r.Method) {
		ref := r.Header.Get("Referer")
		if ref == "" {
			return false
		}
		u, err := url.Parse(ref)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	return true
}

func isUnsafeMethod(m string) bool {
	switch m {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
