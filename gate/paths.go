package gate

import "strings"

type (
	// Paths is the ordered set of paths that do not require authentication.
	Paths []string
)

// RequiresAuth reports whether path needs authentication. An empty path or
// an empty exclusion list always require it. Both sides are compared after
// removing a single trailing slash, there is no prefix or wildcard matching.
func RequiresAuth(path string, excluded []string) bool {
	if path == "" || len(excluded) == 0 {
		return true
	}
	path = trimSlash(path)
	for _, e := range excluded {
		if trimSlash(e) == path {
			return false
		}
	}
	return true
}

func (p Paths) RequireAuth(path string) bool {
	return RequiresAuth(path, p)
}

func trimSlash(p string) string {
	return strings.TrimSuffix(p, "/")
}
