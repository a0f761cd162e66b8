package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes one phase boundary of one unit.
type PhaseEvent struct {
	Unit    string
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted by Run. It may be called
// from several goroutines at once.
type PhaseObserver func(PhaseEvent)

type phaseTimer struct {
	obs   PhaseObserver
	unit  string
	name  string
	start time.Time
}

func startPhase(obs PhaseObserver, unit, name string) phaseTimer {
	if obs != nil {
		obs(PhaseEvent{Unit: unit, Name: name, Status: PhaseStart})
	}
	return phaseTimer{obs: obs, unit: unit, name: name, start: time.Now()}
}

func (p phaseTimer) end(err error) {
	if p.obs == nil {
		return
	}
	p.obs(PhaseEvent{Unit: p.unit, Name: p.name, Status: PhaseEnd, Elapsed: time.Since(p.start), Err: err})
}
