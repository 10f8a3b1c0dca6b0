package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedToday(t *testing.T) {
	// 23:30 in UTC-9 is already the next service day in UTC.
	loc := time.FixedZone("UTC-9", -9*60*60)
	f := Fixed{T: time.Date(2026, 8, 31, 23, 30, 0, 0, loc)}
	assert.Equal(t, "2026-09-01", f.Today())
}

func TestValidServiceDay(t *testing.T) {
	assert.True(t, ValidServiceDay("2026-09-01"))
	assert.False(t, ValidServiceDay("2026-9-1"))
	assert.False(t, ValidServiceDay("01-09-2026"))
	assert.False(t, ValidServiceDay("2026-02-30"))
	assert.False(t, ValidServiceDay(""))
}
