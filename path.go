package urirouter

import (
	"strings"

	"github.com/valyala/bytebufferpool"
)

// CleanPath is the URL version of path.Clean, it returns a canonical URL path
// for p, eliminating . and .. elements.
//
// The following rules are applied iteratively until no further processing can
// be done:
//  1. Replace multiple slashes with a single slash.
//  2. Eliminate each . path name element (the current directory).
//  3. Eliminate each inner .. path name element (the parent directory)
//     along with the non-.. element that precedes it.
//  4. Eliminate .. elements that begin a rooted path:
//     that is, replace "/.." by "/" at the beginning of a path.
//
// If the result of this process is an empty string, "/" is returned
func CleanPath(p string) string {
	if len(p) == 0 {
		return "/"
	}

	last := p[strings.LastIndexByte(p, '/')+1:]
	trailingSlash := len(p) > 1 && (last == "" || last == "." || last == "..")

	segments := make([]string, 0, strings.Count(p, "/")+1)

	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}

	if len(segments) == 0 {
		return "/"
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, seg := range segments {
		buf.WriteByte('/')
		buf.WriteString(seg)
	}

	if trailingSlash {
		buf.WriteByte('/')
	}

	return buf.String()
}
