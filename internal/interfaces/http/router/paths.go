package router

import "strings"

func joinPaths(base, rel string) string {
	if rel == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}

func cutRoute(route string) (method, path string, ok bool) {
	return strings.Cut(route, " ")
}
