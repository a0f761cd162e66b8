package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timings aggregates phase durations reported by concurrent workers.
// Phases are listed in the order they were first seen.
type Timings struct {
	mu     sync.Mutex
	start  time.Time
	order  []string
	phases map[string]*phaseAgg
}

type phaseAgg struct {
	total time.Duration
	count int
	max   time.Duration
}

func NewTimings() *Timings {
	return &Timings{start: time.Now(), phases: make(map[string]*phaseAgg, 4)}
}

// Record adds one finished phase run.
func (t *Timings) Record(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	agg, ok := t.phases[name]
	if !ok {
		agg = &phaseAgg{}
		t.phases[name] = agg
		t.order = append(t.order, name)
	}
	agg.total += d
	agg.count++
	agg.max = max(agg.max, d)
}

// PhaseReport представляет сжатую информацию о фазе для сериализации.
type PhaseReport struct {
	Name    string  `json:"name"`
	Runs    int     `json:"runs"`
	TotalMS float64 `json:"total_ms"`
	MaxMS   float64 `json:"max_ms"`
}

// Report описывает агрегированные данные. WallMS is the time since
// NewTimings; phase totals add up work across workers and may exceed it.
type Report struct {
	WallMS float64       `json:"wall_ms"`
	Phases []PhaseReport `json:"phases"`
}

func (t *Timings) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := Report{WallMS: millis(time.Since(t.start)), Phases: make([]PhaseReport, 0, len(t.order))}
	for _, name := range t.order {
		agg := t.phases[name]
		r.Phases = append(r.Phases, PhaseReport{
			Name:    name,
			Runs:    agg.count,
			TotalMS: millis(agg.total),
			MaxMS:   millis(agg.max),
		})
	}
	return r
}

// Summary renders the report as an aligned table.
func (t *Timings) Summary() string {
	r := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-12s %4dx %9.2f ms  (max %.2f ms)\n", p.Name, p.Runs, p.TotalMS, p.MaxMS)
	}
	fmt.Fprintf(&b, "  %-12s       %9.2f ms\n", "wall", r.WallMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
