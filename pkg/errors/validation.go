package errors

import (
	"strings"
	"unicode"
)

// ValidateCourseTag checks a course tag used as a node ID namespace.
//
// Tags are joined to base IDs with ':' so they must not contain that
// separator, whitespace or control characters. Maximum length is 32.
func ValidateCourseTag(tag string) error {
	if tag == "" {
		return New(ErrCodeInvalidConfig, "course tag cannot be empty")
	}
	if len(tag) > 32 {
		return New(ErrCodeInvalidConfig, "course tag %q too long (max 32 characters)", tag)
	}
	if strings.Contains(tag, ":") {
		return New(ErrCodeInvalidConfig, "course tag %q must not contain ':'", tag)
	}
	for _, r := range tag {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "course tag %q contains whitespace or control characters", tag)
		}
	}
	return nil
}

// ValidateDistinctTags checks that no course tag is used twice.
// Namespacing two courses under the same tag would collide node IDs.
func ValidateDistinctTags(tags []string) error {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if err := ValidateCourseTag(t); err != nil {
			return err
		}
		if seen[t] {
			return New(ErrCodeInvalidConfig, "duplicate course tag %q", t)
		}
		seen[t] = true
	}
	return nil
}
