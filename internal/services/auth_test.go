package services

import "testing"

func TestUsernameValidation(t *testing.T) {
	tests := []struct {
		username string
		valid    bool
	}{
		{"alice", true},
		{"al", false},
		{"user_name-1.a", true},
		{"has spaces", false},
		{"", false},
		{"way-too-long-username-exceeding-the-thirty-two-char-limit", false},
		{"admin", true},
	}

	for _, tc := range tests {
		t.Run(tc.username, func(t *testing.T) {
			if got := usernameRegex.MatchString(tc.username); got != tc.valid {
				t.Errorf("usernameRegex(%q) = %v, want %v", tc.username, got, tc.valid)
			}
		})
	}
}

func TestGenerateToken(t *testing.T) {
	a, err := generateToken(32)
	if err != nil {
		t.Fatalf("generateToken failed: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars for 32 bytes, got %d", len(a))
	}

	b, _ := generateToken(32)
	if a == b {
		t.Error("Tokens must not repeat")
	}
}
