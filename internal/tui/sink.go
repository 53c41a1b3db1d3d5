package tui

import (
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tapcount/internal/engine"
	"github.com/verte-zerg/tapcount/internal/log"
	"github.com/verte-zerg/tapcount/internal/model"
)

var _ engine.Sink = (*Model)(nil)

// Render implements engine.Sink.
func (m *Model) Render(snap engine.Snapshot) {
	m.snap = snap
}

// Animate implements engine.Sink. The counter is highlighted for a short pulse.
func (m *Model) Animate() {
	if !m.settings.Animate {
		return
	}
	m.pulsing = true
	m.pulseID++
	id := m.pulseID
	m.pending = append(m.pending, tea.Tick(pulseDuration, func(time.Time) tea.Msg {
		return pulseEndMsg{id: id}
	}))
}

// PlaySound implements engine.Sink by ringing the terminal bell. The ring is
// queued as a command so it is written outside Update.
func (m *Model) PlaySound(s engine.Sound) {
	if !m.settings.Sound || m.bell == nil {
		return
	}
	m.pending = append(m.pending, ringBell(m.bell, s))
}

func ringBell(w io.Writer, s engine.Sound) tea.Cmd {
	bell := "\a"
	if s == engine.SoundAchievement {
		bell = "\a\a"
	}
	return func() tea.Msg {
		if _, err := io.WriteString(w, bell); err != nil {
			log.Debug(log.CatUI, "bell failed", "sound", s.String(), "err", err)
		}
		return nil
	}
}

// Notify implements engine.Sink. Notices expire on their own.
func (m *Model) Notify(text string) {
	m.noticeID++
	id := m.noticeID
	m.notices = append(m.notices, notice{id: id, text: text})
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
	m.pending = append(m.pending, tea.Tick(noticeLifetime, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	}))
}

// RenderHistory implements engine.Sink.
func (m *Model) RenderHistory(history []model.HistoryEntry) {
	m.history = history
}

// RenderAchievements implements engine.Sink.
func (m *Model) RenderAchievements(ids []string) {
	m.achievements = ids
}

// RenderGoal implements engine.Sink.
func (m *Model) RenderGoal(goal *model.Goal) {
	m.goal = goal
}

// RenderGameStatus implements engine.Sink.
func (m *Model) RenderGameStatus(text string) {
	m.gameStatus = text
}
