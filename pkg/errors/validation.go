package errors

import "unicode"

// ValidateSegment checks a value that will be placed into a single URL path
// segment (owner, repository name, commit SHA, hook ID).
//
// Empty values are rejected because they collapse the path onto a different
// endpoint. "." and ".." are rejected because URL resolution treats them as
// dot-segments. Control characters are rejected outright; everything else is
// percent-encoded by the caller.
func ValidateSegment(name, value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", name)
	}
	if value == "." || value == ".." {
		return New(ErrCodeInvalidInput, "%s cannot be %q", name, value)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid control characters", name)
		}
	}
	return nil
}

// ValidateSegments validates name/value pairs in order and returns the first failure.
func ValidateSegments(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := ValidateSegment(pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}
