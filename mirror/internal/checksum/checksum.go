// Package checksum validates files against the checksum embedded in their
// name: <name>_<hash><ext>, where <hash> is 8 hex digits (CRC-32 IEEE) or
// 64 hex digits (SHA-256).
package checksum

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
	"io"
	"regexp"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

const (
	ReasonPatternNotFound = "hash not found in filename"
	ReasonFileError       = "file error"
)

// Validator checks files with one extension. It is safe for concurrent use.
type Validator struct {
	ext     string
	pattern *regexp.Regexp
}

// New returns a Validator for files ending in ext (".map" when empty).
func New(ext string) *Validator {
	if ext == "" {
		ext = mirrortypes.DefaultExtension
	}
	return &Validator{
		ext: ext,
		// Longest alternative first so a 64-digit token is never read as its last 8 digits.
		pattern: regexp.MustCompile(`_([0-9a-fA-F]{64}|[0-9a-fA-F]{8})` + regexp.QuoteMeta(ext) + `$`),
	}
}

// Extension returns the extension this validator checks.
func (v *Validator) Extension() string {
	return v.ext
}

// Validate reads content and checks it against the hash in filename. A read
// error yields an unreadable-content outcome.
func (v *Validator) Validate(filename string, content io.Reader) mirrortypes.ValidationOutcome {
	expected, ok := v.expectedHash(filename)
	if !ok {
		return mirrortypes.Invalid(mirrortypes.InvalidPatternNotFound, ReasonPatternNotFound)
	}

	if len(expected) == 64 {
		h := sha256.New()
		if _, err := io.Copy(h, content); err != nil {
			return mirrortypes.Invalid(mirrortypes.InvalidUnreadableContent, ReasonFileError)
		}
		actual := hex.EncodeToString(h.Sum(nil))
		if !strings.EqualFold(expected, actual) {
			return mirrortypes.Invalid(mirrortypes.InvalidHashMismatch,
				fmt.Sprintf("hash mismatch, expected %s, actual %s", strings.ToLower(expected), actual))
		}
		return mirrortypes.Valid()
	}

	h := crc32.NewIEEE()
	if _, err := io.Copy(h, content); err != nil {
		return mirrortypes.Invalid(mirrortypes.InvalidUnreadableContent, ReasonFileError)
	}
	actual := fmt.Sprintf("%08x", h.Sum32())
	if !strings.EqualFold(expected, actual) {
		return mirrortypes.Invalid(mirrortypes.InvalidCRCMismatch,
			fmt.Sprintf("crc mismatch, expected %s, actual %s", strings.ToLower(expected), actual))
	}
	return mirrortypes.Valid()
}

// ValidateBytes is Validate over an in-memory buffer.
func (v *Validator) ValidateBytes(filename string, content []byte) mirrortypes.ValidationOutcome {
	return v.Validate(filename, bytes.NewReader(content))
}

// HasChecksum reports whether filename carries a recognizable hash token.
func (v *Validator) HasChecksum(filename string) bool {
	_, ok := v.expectedHash(filename)
	return ok
}

func (v *Validator) expectedHash(filename string) (string, bool) {
	m := v.pattern.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1], true
}
