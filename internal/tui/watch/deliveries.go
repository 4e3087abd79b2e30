package watch

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/ghrelay/internal/events"
	"github.com/mattjoyce/ghrelay/internal/history"
)

const maxTableRows = 50

func newDeliveryTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ST", Width: 2},
			{Title: "Time", Width: 8},
			{Title: "Source", Width: 28},
			{Title: "Event", Width: 14},
			{Title: "Outcome", Width: 15},
			{Title: "Link", Width: 30},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// deliveryFromEvent decodes the history record carried in a delivery.* event.
func deliveryFromEvent(e events.Event) (history.Record, bool) {
	var rec history.Record
	if err := json.Unmarshal(e.Data, &rec); err != nil {
		return history.Record{}, false
	}
	if rec.At.IsZero() {
		rec.At = e.At
	}
	return rec, true
}

func deliveryRow(rec history.Record, theme Theme) table.Row {
	statusSym := "○"
	switch rec.Outcome {
	case "succeed":
		statusSym = theme.StatusOK.Render("●")
	case "failed":
		statusSym = theme.StatusFailed.Render("∅")
	case "nothing to send":
		statusSym = theme.StatusSkipped.Render("○")
	case "rejected":
		statusSym = theme.StatusRejected.Render("◑")
	}

	at := rec.At
	if at.IsZero() {
		at = time.Now()
	}

	return table.Row{
		statusSym,
		at.Local().Format("15:04:05"),
		rec.Source,
		rec.Event,
		rec.Outcome,
		rec.MessageLink,
	}
}

func renderDeliveries(t table.Model, theme Theme, width int) string {
	innerWidth := width - 4

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("DELIVERIES"),
		t.View(),
	)
	return theme.Border.Width(innerWidth).Render(content)
}
