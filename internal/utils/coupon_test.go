package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCouponCode(t *testing.T) {
	re := regexp.MustCompile(`^REWARD-[A-Z0-9]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := NewCouponCode()
		require.NoError(t, err)
		assert.Regexp(t, re, code)
		assert.False(t, seen[code], "codes must not repeat: %s", code)
		seen[code] = true
	}
}
