// Package utils provides small helpers shared across services.
package utils

import (
	"crypto/rand"
	"fmt"
)

const couponAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCouponCode returns a reward coupon code of the form
// "REWARD-XXXXXXXXX" with nine random characters from an unambiguous
// upper-case alphabet.  Randomness comes from crypto/rand; the rewards
// table's unique key catches the astronomically unlikely collision.
func NewCouponCode() (string, error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = couponAlphabet[int(b)%len(couponAlphabet)]
	}
	return fmt.Sprintf("REWARD-%s", buf), nil
}
