package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rocketmc/internal/campaign"
)

const recentCapacity = 8

type (
	TickMsg        time.Time
	workerStartMsg struct{ worker, assigned int }
	iterationMsg   campaign.Outcome
	workerDoneMsg  campaign.WorkerReport

	// FinishedMsg ends the view once the orchestrator has returned.
	FinishedMsg struct {
		Report *campaign.Report
		Err    error
	}
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Feed forwards campaign events into a running program. tea.Program.Send is
// goroutine-safe, so one Feed may be shared by all workers.
type Feed struct {
	s Sender
}

func NewFeed(s Sender) *Feed { return &Feed{s: s} }

func (f *Feed) OnWorkerStart(worker, assigned int) {
	f.s.Send(workerStartMsg{worker: worker, assigned: assigned})
}

func (f *Feed) OnIteration(o campaign.Outcome) {
	f.s.Send(iterationMsg(o))
}

func (f *Feed) OnWorkerDone(r campaign.WorkerReport) {
	f.s.Send(workerDoneMsg(r))
}

type workerRow struct {
	assigned  int
	succeeded int
	failed    int
	state     campaign.State
}

func (w *workerRow) done() int { return w.succeeded + w.failed }

// ProgressModel shows per-worker progress of a running campaign.
type ProgressModel struct {
	title     string
	total     int
	workers   map[int]*workerRow
	recent    []campaign.Outcome
	durations []float64
	started   time.Time
	frame     int
	stopping  bool
	finished  bool
	report    *campaign.Report
	err       error
	stop      func()
}

// NewProgressModel builds the view. stop is invoked once when the user asks
// to quit; the view stays up until a FinishedMsg arrives.
func NewProgressModel(title string, total int, stop func()) ProgressModel {
	return ProgressModel{
		title:   title,
		total:   total,
		workers: make(map[int]*workerRow),
		started: time.Now(),
		stop:    stop,
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if !m.stopping && m.stop != nil {
				m.stop()
			}
			m.stopping = true
		}
	case TickMsg:
		m.frame++
		if m.finished {
			return m, nil
		}
		return m, tick()
	case workerStartMsg:
		m.row(msg.worker).assigned = msg.assigned
		m.row(msg.worker).state = campaign.StateRunning
	case iterationMsg:
		o := campaign.Outcome(msg)
		row := m.row(o.Worker)
		if o.OK() {
			row.succeeded++
		} else {
			row.failed++
		}
		m.durations = append(m.durations, o.Duration.Seconds())
		m.recent = append(m.recent, o)
		if len(m.recent) > recentCapacity {
			m.recent = m.recent[1:]
		}
	case workerDoneMsg:
		m.row(msg.ID).state = msg.State
	case FinishedMsg:
		m.finished = true
		m.report = msg.Report
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) row(id int) *workerRow {
	w, ok := m.workers[id]
	if !ok {
		w = &workerRow{state: campaign.StateIdle}
		m.workers[id] = w
	}
	return w
}

// Done counts attempted iterations across all workers.
func (m ProgressModel) Done() int {
	n := 0
	for _, w := range m.workers {
		n += w.done()
	}
	return n
}

func (m ProgressModel) Finished() bool { return m.finished }

func (m ProgressModel) View() string {
	var b strings.Builder

	status := StatusRunning.Render(AnimatedSpinner(m.frame) + " running")
	switch {
	case m.finished:
		status = StatusOK.Render("done")
	case m.stopping:
		status = StatusCancelled.Render(AnimatedSpinner(m.frame) + " stopping after in-flight runs")
	}
	b.WriteString(Title.Render(m.title) + "  " + status + "\n\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.Done()) / float64(m.total)
	}
	fmt.Fprintf(&b, "%s %s %s\n\n",
		ProgressBar(pct, 40),
		MetricValue.Render(fmt.Sprintf("%d/%d", m.Done(), m.total)),
		MetricLabel.Render(time.Since(m.started).Round(time.Second).String()))

	ids := make([]int, 0, len(m.workers))
	for id := range m.workers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		w := m.workers[id]
		wpct := 0.0
		if w.assigned > 0 {
			wpct = float64(w.done()) / float64(w.assigned)
		}
		fmt.Fprintf(&b, "%s %s %s %s\n",
			MetricLabel.Render(fmt.Sprintf("worker %-3d", id)),
			ProgressBar(wpct, 20),
			MetricValue.Render(fmt.Sprintf("%3d/%-3d", w.done(), w.assigned)),
			stateStyle(w.state).Render(string(w.state)))
	}

	if len(m.durations) > 1 {
		b.WriteString("\n" + MetricLabel.Render("run time ") + SparklineChart(m.durations, 40) + "\n")
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, o := range m.recent {
			line := fmt.Sprintf("%s  w%d  %-13s %s", campaign.ResultName(o.Index), o.Worker, o.Status, o.Duration.Round(time.Millisecond))
			if o.Err != nil {
				line += "  " + o.Err.Error()
			}
			if o.OK() {
				b.WriteString(Subtle.Render(line) + "\n")
			} else {
				b.WriteString(StatusFailed.Render(line) + "\n")
			}
		}
	}

	b.WriteString("\n" + KeyHint.Render("q: stop"))
	return Panel.Render(b.String())
}

func stateStyle(s campaign.State) lipgloss.Style {
	switch s {
	case campaign.StateCompleted:
		return StatusOK
	case campaign.StateCancelled:
		return StatusCancelled
	case campaign.StateRunning:
		return StatusRunning
	default:
		return Subtle
	}
}
