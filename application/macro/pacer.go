package macro

import (
	"strings"
	"time"
)

// replay delays keyed by !REPLAYSPEED
var replaySpeeds = map[string]time.Duration{
	"FAST":   0,
	"MEDIUM": time.Second,
	"SLOW":   2 * time.Second,
}

// Pacer sleeps after every processed macro line
type Pacer struct {
	sleep    func(time.Duration)
	override *time.Duration
}

// NewPacer - creates a pacer; a non-nil override replaces the !REPLAYSPEED mapping
func NewPacer(sleep func(time.Duration), override *time.Duration) *Pacer {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Pacer{sleep: sleep, override: override}
}

// Delay - returns the pause applied for the given replay speed
func (p *Pacer) Delay(speed string) time.Duration {
	if p.override != nil {
		return *p.override
	}
	if d, ok := replaySpeeds[strings.ToUpper(speed)]; ok {
		return d
	}
	return replaySpeeds["MEDIUM"]
}

// Pace - blocks for the delay of the given replay speed
func (p *Pacer) Pace(speed string) {
	if d := p.Delay(speed); d > 0 {
		p.sleep(d)
	}
}
