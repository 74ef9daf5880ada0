package shift_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"jovenva-attendance/internal/shift"

	"github.com/stretchr/testify/assert"
)

func mustRFC3339(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	assert.NoError(t, err)
	return v
}

func TestElapsedBetween(t *testing.T) {
	t.Run("overnight session", func(t *testing.T) {
		start := mustRFC3339(t, "2024-03-01T21:00:00Z")
		e := shift.ElapsedBetween(&start, mustRFC3339(t, "2024-03-02T05:30:00Z"))

		assert.Equal(t, shift.Elapsed{Hours: 8, Minutes: 30, Seconds: 0}, e)
		assert.Equal(t, "08:30:00", e.String())
	})

	t.Run("end before start clamps to zero", func(t *testing.T) {
		start := mustRFC3339(t, "2024-03-01T21:00:00Z")
		e := shift.ElapsedBetween(&start, mustRFC3339(t, "2024-03-01T20:00:00Z"))

		assert.Equal(t, shift.Elapsed{}, e)
		assert.Equal(t, "00:00:00", e.String())
	})

	t.Run("nil start", func(t *testing.T) {
		assert.Equal(t, shift.Elapsed{}, shift.ElapsedBetween(nil, time.Now()))
	})

	t.Run("sub-second remainder is truncated", func(t *testing.T) {
		start := mustRFC3339(t, "2024-03-01T21:00:00Z")
		e := shift.ElapsedBetween(&start, start.Add(61*time.Second+999*time.Millisecond))

		assert.Equal(t, shift.Elapsed{Minutes: 1, Seconds: 1}, e)
	})

	t.Run("hours are not wrapped at a day", func(t *testing.T) {
		start := mustRFC3339(t, "2024-03-01T00:00:00Z")
		e := shift.ElapsedBetween(&start, start.Add(26*time.Hour))

		assert.Equal(t, "26:00:00", e.String())
	})
}

func TestSessionElapsed(t *testing.T) {
	in := mustRFC3339(t, "2024-03-01T13:00:00Z")
	out := in.Add(2 * time.Hour)
	now := in.Add(5 * time.Hour)

	assert.Equal(t, shift.Elapsed{}, shift.SessionElapsed(nil, now))
	assert.Equal(t, shift.Elapsed{Hours: 5}, shift.SessionElapsed(&shift.Record{CheckIn: &in}, now))
	assert.Equal(t, shift.Elapsed{Hours: 2}, shift.SessionElapsed(&shift.Record{CheckIn: &in, CheckOut: &out}, now))
}

func TestWatch(t *testing.T) {
	start := mustRFC3339(t, "2024-03-01T13:00:00Z")
	clock := shift.FixedClock{T: start.Add(90 * time.Second)}

	ctx, cancel := context.WithCancel(context.Background())

	var (
		mu    sync.Mutex
		ticks []shift.Elapsed
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		shift.Watch(ctx, clock, start, 5*time.Millisecond, func(e shift.Elapsed) {
			mu.Lock()
			ticks = append(ticks, e)
			n := len(ticks)
			mu.Unlock()
			if n == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, len(ticks), 3)
	assert.Equal(t, shift.Elapsed{Minutes: 1, Seconds: 30}, ticks[0])
}
