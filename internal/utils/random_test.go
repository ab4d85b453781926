package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := RandomDigits(4)
		assert.Len(t, d, 4)
		for _, c := range d {
			assert.True(t, c >= '0' && c <= '9', "unexpected %q", d)
		}
	}
}

func TestRandomDigitsHook(t *testing.T) {
	RandomDigitsHook = func(n int) (string, bool) { return "0417", true }
	defer func() { RandomDigitsHook = nil }()

	assert.Equal(t, "0417", RandomDigits(4))
}
