package localtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var kst = time.FixedZone("KST", 9*60*60)

func TestIn_KeepsWallClock(t *testing.T) {
	fromDB := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

	got := In(fromDB, kst)

	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, kst, got.Location())
	assert.True(t, got.Equal(time.Date(2026, 10, 15, 10, 0, 0, 0, kst)))
}

func TestWall_RoundTrip(t *testing.T) {
	local := time.Date(2026, 10, 15, 23, 30, 0, 0, kst)

	wall := Wall(local, kst)
	assert.Equal(t, 23, wall.Hour())
	assert.Equal(t, 15, wall.Day())

	assert.True(t, In(wall, kst).Equal(local))
}

func TestDate(t *testing.T) {
	// 2026-10-15 01:00 KST это ещё 14-е по UTC
	local := time.Date(2026, 10, 15, 1, 0, 0, 0, kst)
	assert.Equal(t, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), Date(local, kst))
}

func TestIn_Zero(t *testing.T) {
	assert.True(t, In(time.Time{}, kst).IsZero())
}
