package watch

import (
	"strings"
	"time"
)

// Pulse shows delivery activity with a decaying dot pattern.
// Lights up on deliveries, fades over time.
type Pulse struct {
	dots     int
	lastSeen time.Time
}

func NewPulse() Pulse {
	return Pulse{}
}

func (p *Pulse) OnEvent() {
	p.dots = 5
	p.lastSeen = time.Now()
}

// Decay fades the pulse dots based on time since the last delivery.
func (p *Pulse) Decay() {
	if p.dots == 0 {
		return
	}
	elapsed := time.Since(p.lastSeen)
	switch {
	case elapsed > 10*time.Second:
		p.dots = 0
	case elapsed > 8*time.Second:
		p.dots = 1
	case elapsed > 6*time.Second:
		p.dots = 2
	case elapsed > 4*time.Second:
		p.dots = 3
	case elapsed > 2*time.Second:
		p.dots = 4
	}
}

func (p Pulse) Render(theme Theme) string {
	var result strings.Builder
	for i := range 5 {
		if i < p.dots {
			result.WriteString(theme.PulseActive.Render("●"))
		} else {
			result.WriteString(theme.PulseInactive.Render("○"))
		}
	}
	return result.String()
}

func (p Pulse) LastEvent() time.Time {
	return p.lastSeen
}
