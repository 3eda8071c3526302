package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "structures/tower.bin", false},
		{"absolute", "/tmp/tower.bin", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"dot", "dot", false},
		{" SVG ", "svg", false},
		{"png", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateFormat(tt.input, "dot", "svg")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateStoreKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "0b5c1e1e-8f0a-4c53-9d6c-2b7f3f1f8a10", false},
		{"hash", strings.Repeat("ab", 32), false},
		{"empty", "", true},
		{"uppercase", "ABC", true},
		{"traversal", "../etc", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStoreKey(tt.input); (err != nil) != tt.wantErr {
				t.Errorf("ValidateStoreKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		input   int
		want    uint8
		wantErr bool
	}{
		{0, 0, false},
		{6, 6, false},
		{7, 0, true},
		{-1, 0, true},
		{256, 0, true},
	}

	for _, tt := range tests {
		got, err := ValidateVersion(tt.input, 6)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVersion(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err != nil && !Is(err, ErrCodeUnsupportedVersion) {
			t.Errorf("ValidateVersion(%d) code = %v", tt.input, GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ValidateVersion(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
