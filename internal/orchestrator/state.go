package orchestrator

import (
	"fmt"
	"log/slog"
)

// State is a step of the run state machine
type State int

const (
	StateInit State = iota
	StateClassifying
	StateResolving
	StateAttempting
	StateSuccess
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateClassifying:
		return "Classifying"
	case StateResolving:
		return "ResolvingCandidates"
	case StateAttempting:
		return "AttemptingProvider"
	case StateSuccess:
		return "Success"
	case StateExhausted:
		return "Exhausted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no transition leaves s
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateExhausted
}

// machine tracks the forward-only progress of one run
type machine struct {
	state     State
	candidate int
	log       *slog.Logger
}

// advance moves to the next state. Moving backwards, leaving a terminal
// state or revisiting a candidate is a programming error.
func (m *machine) advance(to State, candidate int) {
	if m.state.Terminal() || to < m.state || (to == m.state && candidate <= m.candidate) {
		panic(fmt.Sprintf("invalid transition %s(%d) -> %s(%d)", m.state, m.candidate, to, candidate))
	}
	m.state = to
	m.candidate = candidate
	if to == StateAttempting {
		m.log.Debug("state transition", "state", to.String(), "candidate", candidate)
		return
	}
	m.log.Debug("state transition", "state", to.String())
}
