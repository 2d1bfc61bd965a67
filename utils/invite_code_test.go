package utils

import (
	"strings"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode: %v", err)
		}
		if len(code) != InviteCodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), InviteCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteCodeCharset, r) {
				t.Fatalf("code %q contains %q outside charset", code, r)
			}
		}
		seen[code] = true
	}
	// 32^8 possible codes; 100 draws colliding down to a handful would mean
	// the generator is broken.
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}

func TestCharsetOmitsAmbiguousCharacters(t *testing.T) {
	for _, r := range "0O1I" {
		if strings.ContainsRune(inviteCodeCharset, r) {
			t.Errorf("charset contains ambiguous %q", r)
		}
	}
}
