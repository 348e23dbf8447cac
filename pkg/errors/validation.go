package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// courseIDRegex matches valid course identifiers: lowercase alphanumerics,
// hyphens, and dots, starting with an alphanumeric.
var courseIDRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*$`)

// ValidateCourseID validates a course identifier for safety and correctness.
// Course ids become file names and cache key components, so the rules are
// intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path traversal sequences (.., /, \)
//   - Maximum length of 128 characters
//   - Lowercase alphanumerics, hyphens, and dots only
func ValidateCourseID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCourse, "course id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidCourse, "course id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCourse, "course id contains control characters")
		}
	}

	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return New(ErrCodeInvalidCourse, "course id contains path characters: %q", id)
	}

	if !courseIDRegex.MatchString(id) {
		return New(ErrCodeInvalidCourse, "invalid course id: %q", id)
	}

	return nil
}

// nodeIDRegex matches valid node identifiers. Node ids come from course
// authors and may carry any word characters plus hyphens and apostrophes
// (vocabulary entries like "l'eau").
var nodeIDRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}'_-]*$`)

// ValidateNodeID validates a node identifier.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}

	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid node id: %q", id)
	}

	return nil
}

// ValidateScriptFilename validates a script filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateScriptFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidScript, "script filename cannot be empty")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidScript, "script filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidScript, "script filename cannot be a hidden file")
	}

	return nil
}

// ValidateCanvas validates render canvas dimensions.
func ValidateCanvas(width, height float64) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidCanvas, "canvas dimensions must be positive, got %gx%g", width, height)
	}

	const maxDimension = 16384
	if width > maxDimension || height > maxDimension {
		return New(ErrCodeInvalidCanvas, "canvas dimensions too large (max %d), got %gx%g", maxDimension, width, height)
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
