// Package tarball decodes the archive names installers report into
// package, version and target architecture.
package tarball

import (
	"errors"
	"fmt"
	"strings"
)

// archiveSuffixes are stripped from identifiers, first match only.
var archiveSuffixes = []string{".tar.gz", ".tar.zst", ".tgz", ".zip"}

// ErrEmptyIdentifier is returned when there is nothing to parse.
var ErrEmptyIdentifier = errors.New("empty artifact identifier")

// UnknownArchitectureError is returned when no known architecture is a suffix
// of the identifier.
type UnknownArchitectureError struct {
	Key   string
	Known []string
}

func (e *UnknownArchitectureError) Error() string {
	return fmt.Sprintf("could not extract architecture from %s", e.Key)
}

// Artifact is a decoded archive identifier.
type Artifact struct {
	Package      string
	Version      string
	Architecture string
}

// Parse decodes name, e.g. "ripgrep-13.0.0-x86_64-unknown-linux-gnu.tar.gz".
//
// The package is everything before the first "-<digit>" and the version is
// whatever remains between the package and the architecture. Names whose
// package contains "-<digit>" split incorrectly; the result is not validated.
func (c *Classifier) Parse(name string) (Artifact, error) {
	if strings.TrimSpace(name) == "" {
		return Artifact{}, ErrEmptyIdentifier
	}

	key := TrimArchiveSuffix(name)

	arch, ok := c.Classify(key)
	if !ok {
		return Artifact{}, &UnknownArchitectureError{Key: key, Known: c.Architectures()}
	}

	pkg := PackageName(key)
	version := strings.TrimPrefix(key, pkg+"-")
	version = strings.TrimSuffix(version, "-"+arch)

	return Artifact{
		Package:      pkg,
		Version:      version,
		Architecture: arch,
	}, nil
}

// TrimArchiveSuffix removes the first known archive extension from name.
func TrimArchiveSuffix(name string) string {
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}

// PackageName returns the prefix of key before the first dash followed by a digit.
// If there is none, the whole key is returned.
func PackageName(key string) string {
	for i := 0; i+1 < len(key); i++ {
		if key[i] == '-' && isDigit(key[i+1]) {
			return key[:i]
		}
	}
	return key
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
