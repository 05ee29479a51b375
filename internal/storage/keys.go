package storage

import (
	"path"
	"strings"
	"unicode"

	"community-api/pkg/apierror"
)

const maxKeyLength = 1024

// ValidateKey normalizes an object key and rejects anything that could
// address outside the configured folders.
func ValidateKey(key string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	if normalized == "" {
		return "", apierror.Validation("invalid media key", "key cannot be empty")
	}

	if len(normalized) > maxKeyLength {
		return "", apierror.Validation("invalid media key", "key is too long")
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", apierror.Validation("invalid media key", "key contains invalid characters")
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.Validation("invalid media key", "key traversal attempt detected")
		}
	}

	clean := path.Clean(strings.TrimPrefix(normalized, "/"))
	if clean == "." || clean == "" {
		return "", apierror.Validation("invalid media key", "key cannot be empty")
	}

	return clean, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}
