package errors

import (
	"strings"
	"unicode"
)

// ValidateMember validates an archive member name before extraction.
// It rejects names that could escape the extraction directory.
//
// Rejected names:
//   - empty names
//   - absolute names (leading "/" or "\")
//   - names with a ".." segment anywhere, using "/" or "\" as separator
//
// The check is not configurable.
func ValidateMember(name string) error {
	if name == "" {
		return New(ErrCodeUnsafeArchiveMember, "archive member has an empty name")
	}
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return New(ErrCodeUnsafeArchiveMember, "archive member %q is an absolute path", name)
	}
	for _, seg := range strings.FieldsFunc(name, isSeparator) {
		if seg == ".." {
			return New(ErrCodeUnsafeArchiveMember, "archive member %q contains a '..' segment", name)
		}
	}
	return nil
}

// ValidateCoordinatePart validates a groupId or artifactId token.
// The colon is the coordinate separator and cannot appear inside a part.
// Parts become path components in the local repository, so path separators,
// "..", whitespace and control characters are rejected too.
func ValidateCoordinatePart(kind, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", kind)
	}
	if strings.Contains(value, ":") {
		return New(ErrCodeInvalidCoordinate, "%s %q cannot contain ':'", kind, value)
	}
	return validatePathToken(kind, value)
}

// ValidateGroupID validates a groupId. On top of [ValidateCoordinatePart],
// every "."-separated segment must be non-empty, since each one becomes a
// directory.
func ValidateGroupID(value string) error {
	if err := ValidateCoordinatePart("groupId", value); err != nil {
		return err
	}
	for _, seg := range strings.Split(value, ".") {
		if seg == "" {
			return New(ErrCodeInvalidCoordinate, "groupId %q has an empty segment", value)
		}
	}
	return nil
}

// ValidateVersion validates a coordinate version token.
// The version is a single path component and is never split.
func ValidateVersion(value string) error {
	if strings.TrimSpace(value) == "" {
		return New(ErrCodeInvalidCoordinate, "version cannot be empty")
	}
	return validatePathToken("version", value)
}

func validatePathToken(kind, value string) error {
	if value == "." {
		return New(ErrCodeInvalidCoordinate, "%s cannot be %q", kind, value)
	}
	dangerousPatterns := []string{
		"..", // Parent directory
		"/",  // Path separator
		"\\", // Backslash (Windows path)
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return New(ErrCodeInvalidCoordinate, "%s %q contains invalid characters: %q", kind, value, pattern)
		}
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidCoordinate, "%s %q contains whitespace or control characters", kind, value)
		}
	}
	return nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
