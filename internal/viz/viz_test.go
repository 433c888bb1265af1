package viz

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rocketmc/internal/analysis"
	"github.com/san-kum/rocketmc/internal/campaign"
	"github.com/san-kum/rocketmc/internal/sim"
	"github.com/san-kum/rocketmc/internal/storage"
)

type captureSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (c *captureSender) Send(msg tea.Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func apply(m ProgressModel, msgs ...tea.Msg) ProgressModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(ProgressModel)
	}
	return m
}

func TestFeedForwardsEvents(t *testing.T) {
	var c captureSender
	var obs campaign.Observer = NewFeed(&c)

	obs.OnWorkerStart(0, 3)
	obs.OnIteration(campaign.Outcome{Worker: 0, Status: sim.StatusOK})
	obs.OnWorkerDone(campaign.WorkerReport{ID: 0, State: campaign.StateCompleted})

	if len(c.msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(c.msgs))
	}

	m := apply(NewProgressModel("test", 3, nil), c.msgs...)
	if m.Done() != 1 {
		t.Errorf("expected 1 done, got %d", m.Done())
	}
	if m.workers[0].state != campaign.StateCompleted {
		t.Errorf("expected worker completed, got %s", m.workers[0].state)
	}
}

func TestProgressModelCounts(t *testing.T) {
	m := apply(NewProgressModel("campaign", 4, nil),
		workerStartMsg{worker: 0, assigned: 2},
		workerStartMsg{worker: 1, assigned: 2},
		iterationMsg(campaign.Outcome{Worker: 0, Index: 0, Status: sim.StatusOK, Duration: time.Second}),
		iterationMsg(campaign.Outcome{Worker: 1, Index: 1, Status: sim.StatusTimeout, Err: sim.ErrProcessTimeout}),
	)

	if m.Done() != 2 {
		t.Errorf("expected 2 done, got %d", m.Done())
	}
	if m.workers[1].failed != 1 {
		t.Errorf("expected worker 1 failure, got %d", m.workers[1].failed)
	}

	view := m.View()
	for _, want := range []string{"campaign", "2/4", "sim-00001.csv", "TIMEOUT"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProgressModelRecentCapped(t *testing.T) {
	m := NewProgressModel("c", 100, nil)
	for i := 0; i < recentCapacity+5; i++ {
		m = apply(m, iterationMsg(campaign.Outcome{Index: i, Status: sim.StatusOK}))
	}
	if len(m.recent) != recentCapacity {
		t.Errorf("expected %d recent, got %d", recentCapacity, len(m.recent))
	}
	if m.recent[0].Index != 5 {
		t.Errorf("expected oldest kept index 5, got %d", m.recent[0].Index)
	}
}

func TestProgressModelStopOnce(t *testing.T) {
	calls := 0
	m := apply(NewProgressModel("c", 1, func() { calls++ }),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")},
		tea.KeyMsg{Type: tea.KeyCtrlC},
	)
	if calls != 1 {
		t.Errorf("expected stop called once, got %d", calls)
	}
	if !m.stopping || m.Finished() {
		t.Error("model should be stopping but not finished")
	}
}

func TestProgressModelFinished(t *testing.T) {
	m := NewProgressModel("c", 1, nil)
	next, cmd := m.Update(FinishedMsg{Report: &campaign.Report{ID: "r"}, Err: errors.New("boom")})
	m = next.(ProgressModel)
	if !m.Finished() {
		t.Error("expected finished")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if _, cmd := m.Update(TickMsg(time.Now())); cmd != nil {
		t.Error("ticks should stop after finish")
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport(&campaign.Report{
		ID:         "abc",
		Iterations: 10,
		Workers:    3,
		Succeeded:  8,
		Failed:     1,
		Cancelled:  1,
		Failures:   map[string]int{"timeout": 1},
		PerWorker: []campaign.WorkerReport{
			{ID: 2, Assigned: 4, Attempted: 3, Succeeded: 2, Failed: 1, Cancelled: 1, State: campaign.StateCancelled},
		},
	})
	for _, want := range []string{"abc", "8 succeeded", "1 failed", "CANCELLED", "timeout", "◆"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	clean := RenderReport(&campaign.Report{ID: "ok", Iterations: 1, Workers: 1, Succeeded: 1})
	if strings.Contains(clean, "◆") || strings.Contains(clean, "failures") {
		t.Errorf("report without failures should have no failure section:\n%s", clean)
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(map[string]analysis.Stats{
		"apogee_m": {N: 2, Mean: 1500, Min: 1000, Max: 2000, StdDev: 707.1},
	})
	if !strings.Contains(out, "apogee_m") || !strings.Contains(out, "1500.00") {
		t.Errorf("unexpected summary:\n%s", out)
	}
}

func TestRenderManifests(t *testing.T) {
	out := RenderManifests([]storage.Manifest{
		{Name: "first", ID: "0123456789abcdef", Report: &campaign.Report{Succeeded: 3}},
		{Name: "second", ID: "x"},
	})
	if !strings.Contains(out, "01234567") || strings.Contains(out, "0123456789") {
		t.Errorf("expected shortened id:\n%s", out)
	}
	if !strings.Contains(out, "second") {
		t.Errorf("missing campaign without report:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := SparklineChart(nil, 5); got != "─────" {
		t.Errorf("expected flat line, got %q", got)
	}
}
