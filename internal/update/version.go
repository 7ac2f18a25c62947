package update

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ParseError reports a version string that does not conform to semantic
// versioning. Callers must treat it as "no update / unknown", never as a
// fatal condition.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseVersion parses a semantic version string, accepting an optional
// "v" prefix. Returns a *ParseError on malformed input.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, &ParseError{Input: s, Err: err}
	}
	return v, nil
}

// CompareVersions compares two version strings.
// Returns:
//   - 1 if a > b
//   - 0 if a == b
//   - -1 if a < b
//   - a *ParseError if either string is invalid
//
// Ordering is numeric per segment, so "1.10.0" > "1.9.9".
func CompareVersions(a, b string) (int, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// IsNewer reports whether candidate is strictly newer than current.
func IsNewer(candidate, current string) (bool, error) {
	cmp, err := CompareVersions(candidate, current)
	if err != nil {
		return false, err
	}
	return cmp > 0, nil
}

// Normalize removes the 'v' prefix if present.
func Normalize(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "v")
}
