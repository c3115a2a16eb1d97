package errors

import "testing"

func TestValidateCourseTag(t *testing.T) {
	tests := []struct {
		tag     string
		wantErr bool
	}{
		{"6A", false},
		{"6C", false},
		{"physics-2", false},
		{"", true},
		{"6:A", true},
		{"6 A", true},
		{"6\tA", true},
		{"abcdefghijklmnopqrstuvwxyz0123456789", true},
	}

	for _, tt := range tests {
		err := ValidateCourseTag(tt.tag)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateCourseTag(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidateCourseTag(%q) code = %v, want %v", tt.tag, GetCode(err), ErrCodeInvalidConfig)
		}
	}
}

func TestValidateDistinctTags(t *testing.T) {
	if err := ValidateDistinctTags([]string{"6A", "6C"}); err != nil {
		t.Errorf("distinct tags should pass: %v", err)
	}
	if err := ValidateDistinctTags([]string{"6A", "6A"}); err == nil {
		t.Error("duplicate tags should fail")
	}
	if err := ValidateDistinctTags([]string{"6A", ""}); err == nil {
		t.Error("empty tag should fail")
	}
	if err := ValidateDistinctTags(nil); err != nil {
		t.Errorf("no tags should pass: %v", err)
	}
}
