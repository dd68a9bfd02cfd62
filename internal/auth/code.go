package auth

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet is the character set for confirmation codes: latin letters
// in both cases plus digits.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// CodeLength is the length of email confirmation codes.
const CodeLength = 6

// GenerateConfirmationCode returns a random 6-character alphanumeric code
// for email confirmation.
func GenerateConfirmationCode() string {
	buf := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform is broken; there is
			// no sensible recovery for a registration code.
			panic(err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}

	return string(buf)
}
