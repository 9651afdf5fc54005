// Package randid generates short random identifiers for human-facing codes.
package randid

import (
	"crypto/rand"
)

// Alphabet omits 0/o and 1/l so codes survive being read aloud.
const Alphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// Generate returns n characters drawn uniformly from Alphabet.
func Generate(n int) string {
	if n <= 0 {
		return ""
	}
	// len(Alphabet) is 32, so the low five bits of each byte index it
	// without modulo bias.
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("randid: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = Alphabet[b&31]
	}
	return string(buf)
}
