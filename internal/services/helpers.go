package services

import (
	"fmt"
	"math"
	"time"

	"queue-system/models"
)

// CeilRollingMean folds one new value into a running average using the
// ceiling-rounded incremental formula new = ceil((old*n + value) / (n+1)).
// Integer arithmetic only; the ceiling (not round-half) rounding is part of
// the numeric contract.
func CeilRollingMean(oldAvg, n, value int) int {
	if n < 0 {
		n = 0
	}
	sum := oldAvg*n + value
	div := n + 1
	if sum <= 0 {
		return 0
	}
	return (sum + div - 1) / div
}

// NextNumber produces the participant number following last: a letter prefix
// plus a 3-digit counter, A001..A999 then B001, wrapping Z999 back to A001.
// An empty or malformed last starts the sequence over at A001.
func NextNumber(last string) string {
	if len(last) != 4 {
		return "A001"
	}
	prefix := last[0]
	if prefix < 'A' || prefix > 'Z' {
		return "A001"
	}
	var counter int
	if _, err := fmt.Sscanf(last[1:], "%03d", &counter); err != nil || counter < 1 || counter > 999 {
		return "A001"
	}
	counter++
	if counter > 999 {
		counter = 1
		prefix = 'A' + (prefix-'A'+1)%26
	}
	return fmt.Sprintf("%c%03d", prefix, counter)
}

// IsOpenNow reports whether the queue accepts joins at the given instant.
// The manual closed flag wins; a queue without open/close times is always
// open; close < open means the window wraps past midnight.
func IsOpenNow(q models.Queue, now time.Time) bool {
	if q.Closed {
		return false
	}
	if q.OpenTime == "" || q.CloseTime == "" {
		return true
	}

	open, err := minuteOfDay(q.OpenTime)
	if err != nil {
		return true
	}
	closeAt, err := minuteOfDay(q.CloseTime)
	if err != nil {
		return true
	}

	current := now.Hour()*60 + now.Minute()

	if open <= closeAt {
		return current >= open && current < closeAt
	}
	// Overnight window, e.g. 22:00-06:00.
	return current >= open || current < closeAt
}

// IsFull reports whether the queue's waiting line hit capacity. Capacity 0
// means unlimited.
func IsFull(q models.Queue, waitingCount int) bool {
	return q.Capacity > 0 && waitingCount >= q.Capacity
}

// MinutesUntilClose returns the minutes from now until the queue's closing
// time, honoring overnight wraparound. Queues without a close time report -1
// (never closes).
func MinutesUntilClose(q models.Queue, now time.Time) int {
	if q.CloseTime == "" {
		return -1
	}
	closeAt, err := minuteOfDay(q.CloseTime)
	if err != nil {
		return -1
	}
	current := now.Hour()*60 + now.Minute()
	diff := closeAt - current
	if diff < 0 {
		diff += 24 * 60
	}
	return diff
}

// HasEnoughTimeRemaining projects the wait for a hypothetical new joiner and
// compares it against the minutes left before close. Used to block joins
// that could not be served in time.
func HasEnoughTimeRemaining(q models.Queue, waitingCount int, now time.Time) bool {
	remaining := MinutesUntilClose(q, now)
	if remaining < 0 {
		return true
	}
	projected := (waitingCount + 1) * q.EstimatedWaitMinutes
	return projected <= remaining
}

// EstimateWait is the live ETA for a participant at the given 1-based
// position.
func EstimateWait(q models.Queue, position int) int {
	if position <= 0 {
		return 0
	}
	return position * q.EstimatedWaitMinutes
}

const earthRadiusKM = 6371.0

// Haversine returns the great-circle distance between two points in km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DurationMinutes rounds an elapsed duration to whole minutes, never
// negative.
func DurationMinutes(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(math.Round(to.Sub(from).Minutes()))
}

func minuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
