package chrono

import (
	"sync"
	"time"
	_ "time/tzdata"
)

// Location is the timezone the game runs on, the daily rollover
// happens at midnight here (CET/CEST).
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		panic(err)
	}
}

// API is the source of the current time, it exists so cooldowns can be
// tested without sleeping.
type API interface {
	Now() time.Time
}

type StandardImpl struct{}

func (StandardImpl) Now() time.Time {
	return time.Now().In(Location)
}

// NextRollover returns the next midnight in game time strictly after `now`.
func NextRollover(now time.Time) time.Time {
	local := now.In(Location)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, Location)
}

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
