package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Ambiguous characters (0/O, 1/I/L) left out; these numbers end up on
// invoices and support tickets.
const numberAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const numberSuffixLen = 6

// NewNumber produces a human-readable order number: KV-<unix ms>-<random>.
// The timestamp keeps numbers roughly sortable; the suffix makes collisions
// within the same millisecond negligible.
func NewNumber() string {
	buf := make([]byte, numberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand never fails on supported platforms
	}
	for i, b := range buf {
		buf[i] = numberAlphabet[int(b)%len(numberAlphabet)]
	}
	return fmt.Sprintf("KV-%d-%s", time.Now().UnixMilli(), buf)
}
