package tarball

import "strings"

// referenceArchitectures is every target installers may report, including
// targets that are not built yet, so demand for them still shows up in the
// statistics.
//
// Order matters: Classify returns the first entry that is a suffix of the key.
// An entry that is a suffix of another entry must come after it.
var referenceArchitectures = []string{
	"x86_64-unknown-linux-gnu",
	"x86_64-unknown-linux-musl",
	"x86_64-apple-darwin",
	"x86_64-pc-windows-msvc",
	"x86_64-pc-windows-gnu",
	"x86_64-unknown-freebsd",
	"x86_64-unknown-netbsd",
	"x86_64-unknown-illumos",
	"aarch64-unknown-linux-gnu",
	"aarch64-unknown-linux-musl",
	"aarch64-apple-darwin",
	"aarch64-pc-windows-msvc",
	"aarch64-linux-android",
	"armv7-unknown-linux-gnueabihf",
	"armv7-unknown-linux-musleabihf",
	"armv7-linux-androideabi",
	"arm-unknown-linux-gnueabihf",
	"arm-unknown-linux-musleabihf",
	"i686-unknown-linux-gnu",
	"i686-unknown-linux-musl",
	"i686-pc-windows-msvc",
	"i686-pc-windows-gnu",
	"powerpc64le-unknown-linux-gnu",
	"riscv64gc-unknown-linux-gnu",
	"s390x-unknown-linux-gnu",
	"universal-apple-darwin",
}

// Classifier matches identifier suffixes against an ordered architecture list.
// It is immutable after construction and safe for concurrent use.
type Classifier struct {
	architectures []string
}

// NewClassifier creates a Classifier over the given ordered list.
// The list is copied.
func NewClassifier(architectures []string) *Classifier {
	return &Classifier{architectures: append([]string(nil), architectures...)}
}

// Default returns a Classifier over the full reference list.
func Default() *Classifier {
	return NewClassifier(referenceArchitectures)
}

// Architectures returns a copy of the ordered architecture list.
func (c *Classifier) Architectures() []string {
	return append([]string(nil), c.architectures...)
}

// Classify returns the first architecture in list order that is a suffix of key.
// The boolean is false when nothing matches.
func (c *Classifier) Classify(key string) (string, bool) {
	for _, arch := range c.architectures {
		if strings.HasSuffix(key, arch) {
			return arch, true
		}
	}
	return "", false
}
