package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RandomDigitsHookFunc lets tests force the output of RandomDigits.
// It returns the digits and whether to override the default generation.
type RandomDigitsHookFunc func(n int) (digits string, override bool)

// RandomDigitsHook is a package-level variable that tests can set to override RandomDigits.
var RandomDigitsHook RandomDigitsHookFunc

// RandomDigits returns n uniformly random decimal digits.
func RandomDigits(n int) string {
	if RandomDigitsHook != nil {
		if d, override := RandomDigitsHook(n); override {
			return d
		}
	}

	var sb strings.Builder
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, ten)
		if err != nil {
			// crypto/rand only fails when the OS source is broken
			sb.WriteByte('0')
			continue
		}
		sb.WriteByte(byte('0' + v.Int64()))
	}
	return sb.String()
}
