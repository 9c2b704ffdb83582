package widget

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	defaultPanelWidth = 44
	maxVisibleRows    = 12
)

// View renders either the collapsed badge or the expanded panel.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.Expanded {
		return m.viewBadge()
	}
	return m.viewPanel()
}

// viewBadge renders the collapsed one-line summary.
func (m Model) viewBadge() string {
	c := m.State.Counts()
	badge := fmt.Sprintf("%s %s",
		remainingStyle.Render(fmt.Sprintf("● %d", c.Remaining)),
		completedStyle.Render(fmt.Sprintf("○ %d", c.Completed)),
	)
	if m.State.Loading {
		badge = m.Spinner.View() + " loading"
	}
	out := badgeStyle.Render(badge)
	if m.State.Notice != "" {
		out += "\n" + noticeStyle.Render(m.State.Notice)
	}
	out += "\n" + helpStyle.Render("enter/tab expand · q quit")
	return out
}

// viewPanel renders the expanded island: input, item list, counters, help.
func (m Model) viewPanel() string {
	width := defaultPanelWidth
	if m.Width > 0 && m.Width-4 < width {
		width = m.Width - 4
	}

	var b strings.Builder

	c := m.State.Counts()
	header := fmt.Sprintf("%s  %s", titleStyle.Render("isle"),
		helpStyle.Render(fmt.Sprintf("%d left · %d done", c.Remaining, c.Completed)))
	b.WriteString(header)
	b.WriteString("\n\n")

	input := m.Input.View()
	if m.State.Adding {
		input = busyMarkerStyle.Render("adding…")
	}
	b.WriteString(input)
	b.WriteString("\n\n")

	switch {
	case m.State.Loading:
		b.WriteString(m.Spinner.View() + " loading…")
		b.WriteString("\n")
	case len(m.State.Items) == 0:
		b.WriteString(helpStyle.Render("Nothing to do."))
		b.WriteString("\n")
	default:
		b.WriteString(m.viewItems(width))
	}

	if m.State.Notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.State.Notice))
	}

	b.WriteString("\n" + helpStyle.Render("enter add · ctrl+t toggle · ctrl+d delete · tab collapse"))

	return panelStyle.Width(width).Render(b.String())
}

// viewItems renders the derived list: incomplete first, completed after.
func (m Model) viewItems(width int) string {
	visible := m.State.Visible()

	start := 0
	if m.Cursor >= maxVisibleRows {
		start = m.Cursor - maxVisibleRows + 1
	}
	end := start + maxVisibleRows
	if end > len(visible) {
		end = len(visible)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		item := visible[i]

		check := "○"
		text := item.Text
		if item.Completed {
			check = completedStyle.Render("●")
			text = doneTextStyle.Render(item.Text)
		}

		marker := " "
		if m.State.Busy(item.ID) {
			marker = busyMarkerStyle.Render("…")
		}

		row := fmt.Sprintf("%s %s %s", marker, check, text)
		row = ansi.Truncate(row, width-4, "…")
		if i == m.Cursor {
			row = selectedRowStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	if len(visible) > end {
		b.WriteString(helpStyle.Render(fmt.Sprintf("  +%d more", len(visible)-end)))
		b.WriteString("\n")
	}

	return b.String()
}
