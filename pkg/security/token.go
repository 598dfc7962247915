package security

import "encoding/hex"

// 128 bits of entropy
const sessionTokenSize = 16

// NewSessionToken returns an opaque random token for a login session
func NewSessionToken() (string, error) {
	b, err := genRandByt(sessionTokenSize)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
