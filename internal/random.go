package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const resetTokenRawSize = 48

// NewResetToken returns a fresh opaque reset token in base64url without
// padding. The raw form carries 48 bytes of entropy.
func NewResetToken() (string, error) {
	var raw [resetTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// HashResetToken maps a presented token to the digest stored server-side, so
// a leaked store never reveals usable tokens.
func HashResetToken(token string) ([32]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return [32]byte{}, err
	}
	if len(raw) != resetTokenRawSize {
		return [32]byte{}, errors.New("invalid reset token size")
	}
	return sha256.Sum256(raw), nil
}
