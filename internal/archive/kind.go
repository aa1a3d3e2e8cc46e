// Package archive expands .tar.gz and .zip archives into a clean directory
// tree, recursively expanding any archives found inside until none remain.
package archive

import (
	"path/filepath"
	"strings"
)

// Kind represents a supported archive container
type Kind int

const (
	// KindUnknown represents a filename without a supported suffix
	KindUnknown Kind = iota
	// KindTarGz represents a gzip-compressed tarball (.tar.gz, .tgz)
	KindTarGz
	// KindZip represents a zip container (.zip)
	KindZip
)

// Recognised suffixes. Matching is case-insensitive.
const (
	SuffixTarGz = ".tar.gz"
	SuffixTgz   = ".tgz"
	SuffixZip   = ".zip"
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindTarGz:
		return "tar.gz"
	case KindZip:
		return "zip"
	default:
		return "unknown"
	}
}

// DetectKind determines the archive kind from the filename alone.
// No magic-byte sniffing is performed.
func DetectKind(name string) Kind {
	base := filepath.Base(name)
	switch {
	case hasSuffixFold(base, SuffixTarGz), hasSuffixFold(base, SuffixTgz):
		return KindTarGz
	case hasSuffixFold(base, SuffixZip):
		return KindZip
	default:
		return KindUnknown
	}
}

// IsArchive reports whether name has a supported archive suffix.
func IsArchive(name string) bool {
	return DetectKind(name) != KindUnknown
}

// Stem strips the archive suffix from name, keeping any directory part.
// Tarballs lose both suffixes ("logs.tar.gz" -> "logs"), zips only their own.
// Names without a supported suffix are returned unchanged.
func Stem(name string) string {
	for _, suffix := range []string{SuffixTarGz, SuffixTgz, SuffixZip} {
		if hasSuffixFold(name, suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
