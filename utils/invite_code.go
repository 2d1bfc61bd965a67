package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Ambiguous characters (0/O, 1/I) are left out since codes get read aloud and
// typed by hand. Matching is case-insensitive.
const inviteCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const InviteCodeLength = 8

func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	max := big.NewInt(int64(len(inviteCodeCharset)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code[i] = inviteCodeCharset[n.Int64()]
	}
	return string(code), nil
}
