package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tapcount/internal/engine"
	"github.com/verte-zerg/tapcount/internal/model"
	"github.com/verte-zerg/tapcount/internal/stats"
)

const (
	leftColumnWidth  = 38
	rightColumnWidth = 40
	wideLayoutWidth  = leftColumnWidth + rightColumnWidth + 6
	statLabelWidth   = 14
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.mode == modeConfirmReset {
		return m.renderConfirm()
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		m.renderCounter(),
		m.renderStats(),
		m.renderGoal(),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHistory(),
		m.renderAchievements(),
	)
	var body string
	if m.width == 0 || m.width >= wideLayoutWidth {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, left, right)
	}

	parts := []string{m.renderHeader(), body}
	if notices := m.renderNotices(); notices != "" {
		parts = append(parts, notices)
	}
	if m.mode == modeGoal || m.mode == modeStep {
		parts = append(parts, m.input.View())
	}
	parts = append(parts, m.help.View(m.keys))
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
}

func (m *Model) renderHeader() string {
	title := m.styles.title.Render("Ultimate Counter")
	settings := fmt.Sprintf("step %d · sound %s · animation %s · theme %s",
		m.settings.Step, onOff(m.settings.Sound), onOff(m.settings.Animate), m.theme.Name)
	return title + "  " + m.styles.muted.Render(settings)
}

func (m *Model) renderCounter() string {
	count := m.snap.Count
	style := m.styles.zero
	switch {
	case count > 0:
		style = m.styles.positive
	case count < 0:
		style = m.styles.negative
	}
	if m.pulsing {
		style = style.Reverse(true)
	}
	value := lipgloss.PlaceHorizontal(leftColumnWidth-4, lipgloss.Center, style.Render(" "+strconv.Itoa(count)+" "))

	barWidth := leftColumnWidth - 4 - 5
	pct := m.snap.ProgressPercent()
	filled := progressCells(pct, barWidth)
	bar := m.styles.barFill.Render(strings.Repeat("█", filled)) +
		m.styles.barEmpty.Render(strings.Repeat("░", barWidth-filled)) +
		fmt.Sprintf(" %3.0f%%", pct)

	lines := []string{value, bar}
	if m.gameStatus != "" {
		lines = append(lines, m.styles.accent.Render(wrapText(m.gameStatus, leftColumnWidth-4)))
	}
	return m.card("Count", strings.Join(lines, "\n"), leftColumnWidth)
}

// progressCells returns how many of width cells a percentage fills.
func progressCells(pct float64, width int) int {
	if width <= 0 {
		return 0
	}
	filled := int(math.Round(pct / 100 * float64(width)))
	if filled < 0 {
		return 0
	}
	if filled > width {
		return width
	}
	return filled
}

func (m *Model) renderStats() string {
	rows := [][2]string{
		{"Total clicks", strconv.Itoa(m.snap.TotalClicks)},
		{"Session time", m.snap.SessionTime()},
		{"Clicks/min", strconv.Itoa(m.snap.ClicksPerMinute())},
		{"Highest", strconv.Itoa(m.snap.HighestValue)},
		{"Lowest", strconv.Itoa(m.snap.LowestValue)},
		{"Achievements", strconv.Itoa(len(m.achievements))},
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, m.styles.muted.Render(padRight(row[0], statLabelWidth))+row[1])
	}
	return m.card("Stats", strings.Join(lines, "\n"), leftColumnWidth)
}

func (m *Model) renderGoal() string {
	return m.card("Goal", goalText(m.goal, m.snap.Count), leftColumnWidth)
}

func goalText(goal *model.Goal, count int) string {
	if goal == nil {
		return "No goal set"
	}
	if goal.Completed {
		return fmt.Sprintf("Goal: %d\nCompleted! 🎉", goal.Target)
	}
	return fmt.Sprintf("Goal: %d\nRemaining: %d", goal.Target, goal.Target-count)
}

func (m *Model) renderHistory() string {
	if len(m.history) == 0 {
		return m.card("History", m.styles.muted.Render("No recent changes"), rightColumnWidth)
	}
	lines := make([]string, 0, len(m.history))
	for _, h := range m.history {
		line := truncate(stats.FormatHistoryEntry(h), rightColumnWidth-4)
		switch {
		case h.Action == model.ActionReset:
			line = m.styles.zero.Render(line)
		case h.Value > 0:
			line = m.styles.positive.Render(line)
		default:
			line = m.styles.negative.Render(line)
		}
		lines = append(lines, line)
	}
	return m.card("History", strings.Join(lines, "\n"), rightColumnWidth)
}

func (m *Model) renderAchievements() string {
	return m.card("Achievements", achievementLines(m.achievements, rightColumnWidth-4), rightColumnWidth)
}

// achievementLines lists named achievements in unlock order and folds goal
// markers into a single count.
func achievementLines(ids []string, width int) string {
	goals := 0
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.HasPrefix(id, engine.GoalMarkerPrefix) {
			goals++
			continue
		}
		name, description := engine.Describe(id)
		lines = append(lines, truncate("🏆 "+name+" · "+description, width))
	}
	if goals > 0 {
		lines = append(lines, fmt.Sprintf("🎯 Goals completed: %d", goals))
	}
	if len(lines) == 0 {
		return "None yet"
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderNotices() string {
	if len(m.notices) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.notices))
	for _, n := range m.notices {
		lines = append(lines, m.styles.notice.Render(n.text))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderConfirm() string {
	prompt := "Reset everything?\n\nThis clears the counter, history, achievements\nand saved data. (y/n)"
	box := m.styles.modal.Render(prompt)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) card(title, body string, width int) string {
	content := m.styles.cardTitle.Render(title) + "\n" + body
	return m.styles.card.Width(width - 2).Render(content)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
