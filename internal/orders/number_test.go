package orders

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var numberRe = regexp.MustCompile(`^KV-\d{13}-[A-HJ-NP-Z2-9]{6}$`)

func TestNewNumberFormat(t *testing.T) {
	n := NewNumber()
	assert.Regexp(t, numberRe, n)
}

func TestNewNumberAvoidsAmbiguousCharacters(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := NewNumber()
		suffix := n[strings.LastIndex(n, "-")+1:]
		for _, c := range suffix {
			assert.NotContains(t, "01OIL", string(c))
		}
	}
}

func TestNewNumberUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		n := NewNumber()
		require.False(t, seen[n], "duplicate order number %s", n)
		seen[n] = true
	}
}
