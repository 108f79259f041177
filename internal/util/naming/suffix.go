package naming

import (
	"crypto/rand"
	"math/big"
)

// SuffixLength is the number of characters in a lab suffix.
// 36^6 is about 2.2 billion combinations.
const SuffixLength = 6

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(suffixAlphabet)))

// RandomSuffix returns a lowercase alphanumeric lab suffix drawn uniformly
// from crypto/rand. It panics if the system entropy source fails.
func RandomSuffix() string {
	b := make([]byte, SuffixLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			panic("naming: reading random source: " + err.Error())
		}
		b[i] = suffixAlphabet[n.Int64()]
	}
	return string(b)
}
