package urirouter

import (
	"strings"

	"github.com/fasthttp/urirouter/uritemplate"
)

const filesSuffix = "/{filepath:.*}"

func validatePath(path string) {
	switch {
	case len(path) == 0 || !strings.HasPrefix(path, "/"):
		panic("path must begin with '/' in path '" + path + "'")
	}
}

func parsePath(path string) *uritemplate.MatchTemplate {
	tpl, err := uritemplate.ParseMatch(path)
	if err != nil {
		panic("invalid path '" + path + "': " + err.Error())
	}

	return tpl
}

// filesPrefix returns the path before the file path variable.
func filesPrefix(path string) string {
	if !strings.HasSuffix(path, filesSuffix) {
		panic("path must end with " + filesSuffix + " in path '" + path + "'")
	}

	return path[:len(path)-len(filesSuffix)]
}
