package utils

import (
	"crypto/rand"
	"math/big"
)

const randomAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomString returns n lowercase alphanumeric characters.
func RandomString(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(randomAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = randomAlphabet[i%len(randomAlphabet)]
			continue
		}
		out[i] = randomAlphabet[idx.Int64()]
	}
	return string(out)
}
