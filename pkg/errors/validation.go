package errors

import (
	"strings"
	"unicode"
)

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateFormat checks format against the allowed set, case-insensitively,
// and returns the normalized (lowercase) form.
func ValidateFormat(format string, allowed ...string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	for _, a := range allowed {
		if f == a {
			return f, nil
		}
	}
	return "", New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

// ValidateStoreKey validates an archive key (a UUID or content hash).
// Only lowercase hex digits and dashes are accepted.
func ValidateStoreKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}
	if len(key) > 64 {
		return New(ErrCodeInvalidInput, "key too long (max 64 characters)")
	}
	for _, r := range key {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f' || r == '-') {
			return New(ErrCodeInvalidInput, "key contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateVersion checks a user-supplied format version against the
// supported range [0, latest].
func ValidateVersion(v, latest int) (uint8, error) {
	if v < 0 || v > latest {
		return 0, New(ErrCodeUnsupportedVersion, "version %d not supported (want 0..%d)", v, latest)
	}
	return uint8(v), nil
}
