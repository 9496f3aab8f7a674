package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"monkquest/internal/engine"
	"monkquest/internal/storage"
	"monkquest/internal/ui"
)

const maxNotices = 4

type boardModel struct {
	ctx context.Context
	eng *engine.Engine

	tickEvery  time.Duration
	flushEvery time.Duration
	lastFlush  time.Time

	width  int
	height int

	state    engine.State
	selected int

	notices []engine.Notice
	lastLog string
}

type tickMsg time.Time

type actionMsg struct {
	log string
	err error
}

type quitMsg struct{}

func newBoardModel(ctx context.Context, eng *engine.Engine, tickEvery, flushEvery time.Duration) boardModel {
	if tickEvery <= 0 {
		tickEvery = engine.DefaultTickInterval
	}
	if flushEvery <= 0 {
		flushEvery = engine.DefaultFlushInterval
	}
	return boardModel{
		ctx:        ctx,
		eng:        eng,
		tickEvery:  tickEvery,
		flushEvery: flushEvery,
		lastFlush:  eng.Now(),
		state:      eng.Snapshot(),
		lastLog:    "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m boardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// actionCmd runs an engine mutation off the update loop.
func (m boardModel) actionCmd(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		log, err := fn()
		return actionMsg{log: log, err: err}
	}
}

func (m boardModel) quitCmd() tea.Cmd {
	return func() tea.Msg {
		_ = m.eng.Close(m.ctx)
		return quitMsg{}
	}
}

// refresh pulls the latest state and any queued notices from the engine.
func (m *boardModel) refresh() {
	m.state = m.eng.Snapshot()
	m.notices = append(m.notices, m.eng.DrainNotices()...)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
	if n := len(m.activeTasks()); m.selected >= n {
		m.selected = max(0, n-1)
	}
}

func (m boardModel) activeTasks() []storage.Task {
	return engine.ActiveTasks(m.state.Tasks)
}

func (m boardModel) selectedTask() (storage.Task, bool) {
	tasks := m.activeTasks()
	if m.selected < 0 || m.selected >= len(tasks) {
		return storage.Task{}, false
	}
	return tasks[m.selected], true
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.eng.Tick(m.ctx)
		if now := m.eng.Now(); now.Sub(m.lastFlush) >= m.flushEvery {
			if err := m.eng.Flush(m.ctx); err != nil {
				m.lastLog = "Save failed: " + err.Error()
			}
			m.lastFlush = now
		}
		m.refresh()
		return m, m.tickCmd()
	case actionMsg:
		if msg.err != nil {
			m.lastLog = msg.err.Error()
		} else {
			m.lastLog = msg.log
		}
		m.refresh()
		return m, nil
	case quitMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.lastLog = "Saving…"
		return m, m.quitCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.activeTasks())-1 {
			m.selected++
		}
		return m, nil
	case "b":
		return m, m.actionCmd(func() (string, error) {
			out, err := m.eng.PressBreach(m.ctx)
			if err != nil {
				return "", err
			}
			if out == engine.BreachArmed {
				return fmt.Sprintf("Press b again within %s to abandon Monk Mode.", engine.BreachWindow), nil
			}
			return "Monk Mode abandoned.", nil
		})
	}

	t, ok := m.selectedTask()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case " ", "s":
		return m, m.actionCmd(func() (string, error) {
			if t.IsRunning {
				if _, err := m.eng.StopTimer(m.ctx, t.ID); err != nil {
					return "", err
				}
				return fmt.Sprintf("Paused %q.", t.Title), nil
			}
			if _, err := m.eng.StartTimer(m.ctx, t.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Tracking %q.", t.Title), nil
		})
	case "d", "enter":
		return m, m.actionCmd(func() (string, error) {
			res, err := m.eng.CompleteTask(m.ctx, t.ID)
			if err != nil {
				return "", err
			}
			s := fmt.Sprintf("Completed %d: +%d EXP (level %d → %d)", res.TaskID, res.ExpAwarded, res.LevelBefore, res.LevelAfter)
			if !res.OnTime {
				s += " late"
			}
			return s, nil
		})
	case "x":
		return m, m.actionCmd(func() (string, error) {
			if _, err := m.eng.DeleteTask(m.ctx, t.ID); err != nil {
				return "", err
			}
			return fmt.Sprintf("Abandoned %q.", t.Title), nil
		})
	}
	return m, nil
}

func (m boardModel) View() string {
	sidebar := m.renderSidebar()
	main := m.renderMain()

	leftW := 30
	if m.width > 0 {
		leftW = max(20, min(leftW, m.width/2))
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return m.renderHeader() + "\n\n" + body.String() + m.renderFooter()
}

func (m boardModel) renderHeader() string {
	st := m.state.Stats
	name := st.Name
	if name == "" {
		name = engine.DefaultDisplayName
	}
	bar := ui.ProgressBar(st.CurrentExp, st.NextLevelExp, 24)
	return fmt.Sprintf("%s | %s the %s | Level %d | EXP %d/%d %s | %s %d",
		ui.Title.Render("monkquest"), name, st.Class, st.Level,
		st.CurrentExp, st.NextLevelExp, bar, ui.IconFlame, st.Streak)
}

func (m boardModel) renderSidebar() string {
	st := m.state.Stats
	overall := engine.OverallStats(m.state.Tasks)

	lines := []string{ui.PanelTitle.Render("Discipline")}
	lines = append(lines, fmt.Sprintf("Success %s", ui.RateText(overall.Rate, engine.DefaultMinSuccessRate)))
	lines = append(lines, fmt.Sprintf("On time %d  Late %d", overall.OnTime, overall.Late()))
	lines = append(lines, fmt.Sprintf("Abandoned %d", overall.Abandoned))
	lines = append(lines, "")

	lines = append(lines, ui.PanelTitle.Render("Monk Mode"))
	if mm := st.MonkMode; mm != nil && mm.Active {
		elapsed := engine.ElapsedDays(mm.StartDate, m.eng.Now())
		session := engine.SessionStats(m.state.Tasks, mm.StartDate)
		lines = append(lines, fmt.Sprintf("%s %s", ui.IconMonk, mm.Duration))
		lines = append(lines, fmt.Sprintf("Day %d/%d %s", elapsed, mm.TotalDays, ui.ProgressBar(elapsed, mm.TotalDays, 8)))
		lines = append(lines, fmt.Sprintf("Session %s (min %d%%)", ui.RateText(session.Rate, mm.MinSuccessRate), mm.MinSuccessRate))
		if m.eng.BreachArmed() {
			lines = append(lines, ui.Bad.Render("Breach armed!"))
		}
	} else {
		lines = append(lines, ui.Muted.Render("inactive"))
	}
	if len(st.UnlockedMilestones) > 0 {
		var labels []string
		for _, d := range st.UnlockedMilestones {
			if ms, ok := engine.MilestoneFor(d); ok {
				labels = append(labels, ms.Label)
			}
		}
		lines = append(lines, ui.IconPeak+" "+strings.Join(labels, ", "))
	}
	lines = append(lines, "")

	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- space: start/stop timer")
	lines = append(lines, "- d: complete")
	lines = append(lines, "- x: abandon")
	lines = append(lines, "- b: breach monk mode")
	lines = append(lines, "- q: save and quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	out := []string{ui.PanelTitle.Render("Quests")}
	tasks := m.activeTasks()
	if len(tasks) == 0 {
		out = append(out, ui.Muted.Render("(no active quests, add one with `mq add`)"))
		return strings.Join(out, "\n")
	}
	now := m.eng.Now()
	for i, t := range tasks {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		clock := ui.Clock(time.Duration(t.TimeSpent * float64(time.Second)))
		if t.IsRunning {
			clock = ui.Warn.Render(ui.IconClock + " " + clock)
		}
		line := fmt.Sprintf("%s#%d %s [%s] %s", cursor, t.ID, t.Title, ui.PriorityText(t.Priority), clock)
		if t.Deadline != nil {
			due := t.Deadline.In(m.eng.Location()).Format("Jan 2 15:04")
			if !now.Before(*t.Deadline) {
				line += " " + ui.BadgeLate + " " + due
			} else {
				line += " due " + due
			}
		}
		if t.RemindAt != nil && !t.ReminderFired {
			line += " " + ui.IconBell
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, n := range m.notices {
		b.WriteString(fmt.Sprintf("%s %s %s\n", ui.IconBell, ui.Gold.Render(n.Title), n.Body))
	}
	b.WriteString(m.lastLog)
	return b.String()
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
