package redisx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesCommandTimeouts(t *testing.T) {
	c := New("127.0.0.1:6379")
	opts := c.Options()
	assert.Equal(t, opTimeout, opts.ReadTimeout)
	assert.Equal(t, opTimeout, opts.WriteTimeout)
}
