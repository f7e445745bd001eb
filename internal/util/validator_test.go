package util

import (
	"testing"
)

func TestValidateUsername_Valid(t *testing.T) {
	testCases := []string{"abc", "user_1", "Teacher2024", "a_b_c"}

	for _, username := range testCases {
		if err := ValidateUsername(username); err != nil {
			t.Errorf("ValidateUsername(%q) error = %v, want nil", username, err)
		}
	}
}

func TestValidateUsername_Invalid(t *testing.T) {
	testCases := []string{"", "ab", "has space", "почта", "way-too-hyphenated", "x@y"}

	for _, username := range testCases {
		if err := ValidateUsername(username); err == nil {
			t.Errorf("ValidateUsername(%q) error = nil, want error", username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("ValidatePassword error = %v, want nil", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Error("short password: error = nil, want error")
	}
}

func TestValidatePhone_Valid(t *testing.T) {
	testCases := []string{"", "+79991234567", "84951234567", "1234567"}

	for _, phone := range testCases {
		if err := ValidatePhone(phone); err != nil {
			t.Errorf("ValidatePhone(%q) error = %v, want nil", phone, err)
		}
	}
}

func TestValidatePhone_Invalid(t *testing.T) {
	testCases := []string{"123", "phone", "+7 999 123", "123456789012345678"}

	for _, phone := range testCases {
		if err := ValidatePhone(phone); err == nil {
			t.Errorf("ValidatePhone(%q) error = nil, want error", phone)
		}
	}
}
