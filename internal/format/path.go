package format

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidPath is returned by NewPath for malformed node paths.
var ErrInvalidPath = errors.New("invalid path")

// RootPath is the path of the root group.
const RootPath Path = "/"

// Path is an absolute, slash separated node path such as "/group/array".
type Path string

// NewPath validates p and returns it NFC normalized.
//
// A valid path starts with "/", has no empty segments (except the root path
// itself) and contains no "." or ".." segments. A single trailing slash is
// tolerated and stripped.
func NewPath(p string) (Path, error) {
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q must start with /", ErrInvalidPath, p)
	}
	if p == "/" {
		return RootPath, nil
	}
	p = strings.TrimSuffix(p, "/")
	for _, seg := range strings.Split(p[1:], "/") {
		switch seg {
		case "":
			return "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, p)
		case ".", "..":
			return "", fmt.Errorf("%w: %q has a relative segment", ErrInvalidPath, p)
		}
	}
	return Path(norm.NFC.String(p)), nil
}

// MustPath is like NewPath but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPath(p string) Path {
	path, err := NewPath(p)
	if err != nil {
		panic(err)
	}
	return path
}

// Name returns the last segment of the path ("" for the root).
func (p Path) Name() string {
	if p == RootPath {
		return ""
	}
	return string(p[strings.LastIndex(string(p), "/")+1:])
}

// Parent returns the parent path. The root is its own parent.
func (p Path) Parent() Path {
	i := strings.LastIndex(string(p), "/")
	if i <= 0 {
		return RootPath
	}
	return p[:i]
}
