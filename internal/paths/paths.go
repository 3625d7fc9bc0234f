// Package paths implements the path syntax of the flat map.
//
// A path is a "/"-separated list of segments where array indices are
// appended to their parent segment, as in /a/b[2]/c. The document root
// is "/", and the elements of a root array are [0], [1], ...
package paths

import (
	"strconv"
	"strings"
)

const (
	// Root addresses the whole document
	Root = "/"
	// Self is the property that designates the row itself
	Self = "."
	// Parent is the segment that designates the enclosing segment
	Parent = ".."

	separator = "/"
)

// NormalizeProperty strips one leading "./" and then any leading "/",
// so that "./x", "/x", "//x" and "x" are equivalent.
func NormalizeProperty(property string) string {
	property = strings.TrimPrefix(property, "./")
	return strings.TrimLeft(property, separator)
}

// NormalizeEntry makes entry absolute. An empty entry is the root.
func NormalizeEntry(entry string) string {
	if entry == "" {
		return Root
	}
	if !strings.HasPrefix(entry, separator) {
		return separator + entry
	}
	return entry
}

// Segments returns the non-empty segments of path
func Segments(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, separator) {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// Child appends segment to prefix. The root prefix does not double the slash.
func Child(prefix, segment string) string {
	if prefix == Root {
		return Root + segment
	}
	return prefix + separator + segment
}

// Index returns the path of element i of the array at path
func Index(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// Join resolves a normalized property against a row path. The property
// "." designates the row itself. Parent references are not resolved here,
// see ResolveParents.
func Join(row, property string) string {
	// The root row contributes nothing so that "/" + property stays absolute
	if row == Root {
		row = ""
	}
	if property == Self {
		return row
	}
	return row + separator + property
}

// ResolveParents removes every "/../" step together with the segment
// preceding it, so /a/arr[2]/../sibling becomes /a/sibling. An indexed
// segment such as arr[2] is consumed as a whole. A ".." with nothing left
// to consume is dropped, so a path never climbs above the root. A trailing
// ".." is not a step and stays in the path.
func ResolveParents(path string) string {
	if !strings.Contains(path, Parent) {
		return path
	}

	absolute := strings.HasPrefix(path, separator)
	if absolute {
		path = path[len(separator):]
	}

	segments := strings.Split(path, separator)
	resolved := make([]string, 0, len(segments))
	last := len(segments) - 1
	for i, segment := range segments {
		if segment != Parent || i == last {
			resolved = append(resolved, segment)
			continue
		}
		if len(resolved) > 0 {
			resolved = resolved[:len(resolved)-1]
		}
	}

	joined := strings.Join(resolved, separator)
	if absolute {
		return separator + joined
	}
	return joined
}
