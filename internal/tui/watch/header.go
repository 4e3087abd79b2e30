package watch

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// HealthState tracks relay health from /healthz polling.
type HealthState struct {
	Status          string
	UptimeSeconds   int64
	Sources         int
	DeliveriesTotal int64
	Connected       bool
	LastCheck       time.Time
}

func renderHeader(health HealthState, pulse Pulse, theme Theme, width int) string {
	innerWidth := width - 4

	// Status
	statusText := theme.StatusOK.Render("HEALTHY")
	statusIcon := "✅"
	if !health.Connected {
		statusText = theme.StatusFailed.Render("CONNECTING")
		statusIcon = "🔌"
	} else if health.Status != "ok" && health.Status != "" {
		statusText = theme.StatusFailed.Render("DEGRADED")
		statusIcon = "⚠️"
	}

	// Uptime
	uptime := time.Duration(health.UptimeSeconds) * time.Second
	uptimeStr := formatDuration(uptime)

	// Last delivery
	lastDeliveryStr := "never"
	if !pulse.LastEvent().IsZero() {
		ago := time.Since(pulse.LastEvent()).Round(time.Second)
		lastDeliveryStr = fmt.Sprintf("%s ago", ago)
	}

	// Title line with clock
	clock := theme.Dim.Render(time.Now().Format("15:04:05"))
	titleText := " GHRELAY WATCH"

	// Calculate padding between title and clock
	titleWidth := lipgloss.Width(titleText)
	clockWidth := lipgloss.Width(clock)
	pad := innerWidth - titleWidth - clockWidth - 4
	if pad < 1 {
		pad = 1
	}
	titleLine := titleText + strings.Repeat(" ", pad) + clock + " "

	// Stats line
	statsLine := fmt.Sprintf(" %s %s  ⏱ %s  Sources: %d  Deliveries: %d",
		statusIcon, statusText,
		uptimeStr,
		health.Sources,
		health.DeliveriesTotal,
	)

	// Activity line
	activityLine := fmt.Sprintf(" Last delivery: %s %s",
		lastDeliveryStr,
		pulse.Render(theme),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleLine,
		statsLine,
		activityLine,
	)

	return theme.Border.Width(innerWidth).Render(content)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
