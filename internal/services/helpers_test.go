package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"queue-system/models"
)

func TestCeilRollingMean(t *testing.T) {
	// First sample becomes the average as-is.
	assert.Equal(t, 10, CeilRollingMean(0, 0, 10))

	// 10, 20, 30 folded in sequence.
	avg := CeilRollingMean(0, 0, 10)
	avg = CeilRollingMean(avg, 1, 20)
	assert.Equal(t, 15, avg)
	avg = CeilRollingMean(avg, 2, 30)
	assert.Equal(t, 20, avg)

	// Ceiling, not round-half: (5*1 + 6) / 2 = 5.5 -> 6.
	assert.Equal(t, 6, CeilRollingMean(5, 1, 6))
	// (1*2 + 0) / 3 = 0.66 -> 1.
	assert.Equal(t, 1, CeilRollingMean(1, 2, 0))

	// Zero samples stay zero.
	assert.Equal(t, 0, CeilRollingMean(0, 5, 0))
}

func TestNextNumber(t *testing.T) {
	assert.Equal(t, "A001", NextNumber(""))
	assert.Equal(t, "A002", NextNumber("A001"))
	assert.Equal(t, "A100", NextNumber("A099"))
	assert.Equal(t, "B001", NextNumber("A999"))
	assert.Equal(t, "C001", NextNumber("B999"))

	// Z999 wraps back to the start of the alphabet.
	assert.Equal(t, "A001", NextNumber("Z999"))

	// Malformed input restarts the sequence.
	assert.Equal(t, "A001", NextNumber("9999"))
	assert.Equal(t, "A001", NextNumber("A00"))
	assert.Equal(t, "A001", NextNumber("a001"))
	assert.Equal(t, "A001", NextNumber("A000"))
}

func TestIsOpenNow(t *testing.T) {
	at := func(hhmm string) time.Time {
		parsed, err := time.Parse("15:04", hhmm)
		assert.NoError(t, err)
		return time.Date(2026, 3, 10, parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
	}

	day := models.Queue{OpenTime: "09:00", CloseTime: "17:00"}
	assert.False(t, IsOpenNow(day, at("08:59")))
	assert.True(t, IsOpenNow(day, at("09:00")))
	assert.True(t, IsOpenNow(day, at("16:59")))
	assert.False(t, IsOpenNow(day, at("17:00")))

	// Overnight window wraps past midnight.
	night := models.Queue{OpenTime: "22:00", CloseTime: "06:00"}
	assert.True(t, IsOpenNow(night, at("23:30")))
	assert.True(t, IsOpenNow(night, at("02:00")))
	assert.False(t, IsOpenNow(night, at("06:00")))
	assert.False(t, IsOpenNow(night, at("12:00")))

	// Manual closed flag wins over the schedule.
	closed := models.Queue{OpenTime: "09:00", CloseTime: "17:00", Closed: true}
	assert.False(t, IsOpenNow(closed, at("12:00")))

	// No schedule means always open.
	assert.True(t, IsOpenNow(models.Queue{}, at("03:00")))
}

func TestIsFull(t *testing.T) {
	assert.False(t, IsFull(models.Queue{Capacity: 0}, 10000))
	assert.False(t, IsFull(models.Queue{Capacity: 5}, 4))
	assert.True(t, IsFull(models.Queue{Capacity: 5}, 5))
	assert.True(t, IsFull(models.Queue{Capacity: 5}, 6))
}

func TestMinutesUntilClose(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 30, 0, 0, time.UTC)

	assert.Equal(t, 30, MinutesUntilClose(models.Queue{CloseTime: "17:00"}, now))
	assert.Equal(t, -1, MinutesUntilClose(models.Queue{}, now))

	// Close time already passed today rolls to tomorrow.
	assert.Equal(t, 23*60+30, MinutesUntilClose(models.Queue{CloseTime: "16:00"}, now))
}

func TestHasEnoughTimeRemaining(t *testing.T) {
	now := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	q := models.Queue{CloseTime: "17:00", EstimatedWaitMinutes: 15}

	// 3 waiting: the new joiner would be 4th, 4*15 = 60 <= 60.
	assert.True(t, HasEnoughTimeRemaining(q, 3, now))
	// 4 waiting: 5*15 = 75 > 60.
	assert.False(t, HasEnoughTimeRemaining(q, 4, now))

	// No close time never blocks.
	assert.True(t, HasEnoughTimeRemaining(models.Queue{EstimatedWaitMinutes: 60}, 100, now))
}

func TestEstimateWait(t *testing.T) {
	q := models.Queue{EstimatedWaitMinutes: 10}
	assert.Equal(t, 0, EstimateWait(q, 0))
	assert.Equal(t, 10, EstimateWait(q, 1))
	assert.Equal(t, 50, EstimateWait(q, 5))
}

func TestHaversine(t *testing.T) {
	// Same point.
	assert.InDelta(t, 0, Haversine(17.9757, 102.6331, 17.9757, 102.6331), 0.001)

	// Vientiane to Bangkok, roughly 520 km.
	d := Haversine(17.9757, 102.6331, 13.7563, 100.5018)
	assert.InDelta(t, 520, d, 15)

	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.19, Haversine(0, 0, 1, 0), 0.5)
}

func TestDurationMinutes(t *testing.T) {
	from := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, DurationMinutes(from, from.Add(30*time.Minute)))
	// Rounds to nearest whole minute.
	assert.Equal(t, 30, DurationMinutes(from, from.Add(30*time.Minute+20*time.Second)))
	assert.Equal(t, 31, DurationMinutes(from, from.Add(30*time.Minute+40*time.Second)))
	// Clock skew never yields negative durations.
	assert.Equal(t, 0, DurationMinutes(from, from.Add(-5*time.Minute)))
}
