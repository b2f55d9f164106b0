package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextRollover(t *testing.T) {
	testCases := []struct {
		now    time.Time
		expect time.Time
	}{
		{
			// 23:30 UTC in winter is already 00:30 in Amsterdam
			now:    time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC),
			expect: time.Date(2024, 1, 12, 0, 0, 0, 0, Location),
		},
		{
			now:    time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC),
			expect: time.Date(2024, 7, 11, 0, 0, 0, 0, Location),
		},
		{
			now:    time.Date(2024, 12, 31, 22, 0, 0, 0, Location),
			expect: time.Date(2025, 1, 1, 0, 0, 0, 0, Location),
		},
	}
	for _, test := range testCases {
		require.True(t, test.expect.Equal(NextRollover(test.now)), "now=%s got=%s", test.now, NextRollover(test.now))
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, Location)
	clock := NewFakeClock(start)
	clock.Advance(time.Minute)
	require.Equal(t, start.Add(time.Minute), clock.Now())
}

func TestCronRejectsBadSpec(t *testing.T) {
	c := NewStandardCron()
	defer c.Stop()

	require.NoError(t, c.Cron(DailyRolloverSpec, func() {}))
	require.Error(t, c.Cron("not a spec", func() {}))
}
