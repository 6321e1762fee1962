// internal/game/countdown.go
//
// Per-word countdown. Pure state: the owner calls Tick once per time unit
// (see internal/play for the ticker that drives it).
//
//   idle ──Start──▶ running ──Tick×N──▶ expired
//                      │ ▲
//                 Stop │ │ Reset
//                      ▼ │
//                    stopped

package game

// CountdownState is the state of a Countdown.
type CountdownState string

const (
	CountdownIdle    CountdownState = "idle"
	CountdownRunning CountdownState = "running"
	CountdownExpired CountdownState = "expired"
	CountdownStopped CountdownState = "stopped"
)

// Countdown counts a fixed number of ticks down to zero.
type Countdown struct {
	duration  int
	remaining int
	state     CountdownState
}

// NewCountdown returns an idle countdown of the given length.
func NewCountdown(ticks int) *Countdown {
	return &Countdown{duration: ticks, remaining: ticks, state: CountdownIdle}
}

// Start begins counting from the full duration.
func (c *Countdown) Start() {
	c.remaining = c.duration
	c.state = CountdownRunning
}

// Reset restarts from the full duration without reporting a timeout.
func (c *Countdown) Reset() { c.Start() }

// Stop halts ticking; the remaining time is kept for display.
func (c *Countdown) Stop() {
	if c.state == CountdownRunning {
		c.state = CountdownStopped
	}
}

// Tick advances the countdown by one unit and reports true exactly once,
// on the tick that reaches zero.
func (c *Countdown) Tick() bool {
	if c.state != CountdownRunning {
		return false
	}
	c.remaining--
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.state = CountdownExpired
	return true
}

func (c *Countdown) Remaining() int        { return c.remaining }
func (c *Countdown) Duration() int         { return c.duration }
func (c *Countdown) State() CountdownState { return c.state }
