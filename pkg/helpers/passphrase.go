package helpers

import (
	"crypto/rand"
	"math/big"
)

const (
	PassphraseLength   = 8
	passphraseAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenPassphrase returns a random lowercase alphanumeric passphrase of PassphraseLength.
func GenPassphrase() (string, error) {
	max := big.NewInt(int64(len(passphraseAlphabet)))
	b := make([]byte, PassphraseLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passphraseAlphabet[n.Int64()]
	}
	return string(b), nil
}
