package dedup

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecord is wrapped by every ValidationError.
var ErrInvalidRecord = errors.New("invalid record")

// ValidationError describes one record rejected before analysis.
type ValidationError struct {
	Index  int
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.Path, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRecord }

// ErrorKind classifies the failure for callers that map errors to exit codes.
func (e *ValidationError) ErrorKind() string { return "validation" }

// ValidateBatch checks that every record carries a usable identity hash. With
// strict set, hashes must also be 40-character hexadecimal SHA-1 digests.
// All problems are reported together; nil means the batch can be analyzed.
func ValidateBatch(records []Record, strict bool) error {
	var errs []error
	for i, record := range records {
		hash := record.Hash
		switch {
		case strings.TrimSpace(hash) == "":
			errs = append(errs, &ValidationError{Index: i, Path: record.Path, Reason: "identity hash is empty"})
		case hash != strings.TrimSpace(hash):
			errs = append(errs, &ValidationError{Index: i, Path: record.Path, Reason: "identity hash has surrounding whitespace"})
		case strict && !isSHA1Hex(hash):
			errs = append(errs, &ValidationError{Index: i, Path: record.Path, Reason: fmt.Sprintf("identity hash %q is not a sha1 hex digest", hash)})
		}
	}
	return errors.Join(errs...)
}

func isSHA1Hex(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
