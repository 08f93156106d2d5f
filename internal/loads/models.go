package loads

import (
	"strings"
	"time"
)

// State represents the lifecycle of a load record.
type State string

const (
	StateNew     State = "NEW"
	StateReady   State = "READY"
	StateScored  State = "SCORED"
	StateApplied State = "APPLIED"
	StateIgnored State = "IGNORED"
)

var allStates = []State{
	StateNew,
	StateReady,
	StateScored,
	StateApplied,
	StateIgnored,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// terminalStates are operator-owned; no engine may move a row out of them.
var terminalStates = map[State]struct{}{
	StateApplied: {},
	StateIgnored: {},
}

// preservedStates are never reset by re-ingestion or tagging.
var preservedStates = map[State]struct{}{
	StateScored:  {},
	StateApplied: {},
	StateIgnored: {},
}

// transitions is the legal state machine: NEW -> READY -> SCORED -> APPLIED|IGNORED.
var transitions = map[State][]State{
	StateNew:    {StateReady},
	StateReady:  {StateScored},
	StateScored: {StateApplied, StateIgnored},
}

// AllStates returns the ordered list of known states.
func AllStates() []State {
	cp := make([]State, len(allStates))
	copy(cp, allStates)
	return cp
}

// TerminalStates returns the operator-owned final states.
func TerminalStates() []State {
	return []State{StateApplied, StateIgnored}
}

// PreservedStates returns the states re-ingestion must leave untouched.
func PreservedStates() []State {
	return []State{StateScored, StateApplied, StateIgnored}
}

// ParseState converts a string into a known State.
func ParseState(value string) (State, bool) {
	normalized := State(strings.ToUpper(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving from s to next is a legal lifecycle
// step. Writing the same state back is always legal (rescoring recomputes a
// SCORED row in place).
func (s State) CanTransition(next State) bool {
	if s == next {
		return true
	}
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state is operator-owned and final.
func (s State) IsTerminal() bool {
	_, ok := terminalStates[s]
	return ok
}

// IsPreserved reports whether re-ingestion must leave the state untouched.
func (s State) IsPreserved() bool {
	_, ok := preservedStates[s]
	return ok
}

// Load is a freight load row as persisted in the store. Descriptive fields
// come from the feed and are overwritten on every merge; derived fields
// (State, ShortlistTag, ShortlistedAt, MatchScore) are owned by the engines
// and survive re-ingestion.
type Load struct {
	Key string

	OriginCity     string
	OriginState    string
	DestCity       string
	DestState      string
	OriginDeadhead *int64
	DestDeadhead   *int64
	Distance       *int64
	Rate           string
	RPM            string
	Weight         *int64
	Length         *int64
	Equipment      string
	Mode           string
	Pickup         string
	Company        string
	Updated        string
	D2P            string

	State         State
	ShortlistTag  string
	ShortlistedAt *time.Time
	MatchScore    *float64
	FirstSeenAt   time.Time
	LastSeenAt    time.Time
	RawJSON       string
}

// Input is a candidate load record as delivered by the external feed, after
// alias field names have been mapped at the transport boundary. String
// fields keep the feed's raw text; numeric deadheads and distances are
// parsed tolerantly by the feed layer.
type Input struct {
	OriginCity     string
	OriginState    string
	DestCity       string
	DestState      string
	OriginDeadhead *int64
	DestDeadhead   *int64
	Distance       *int64
	Rate           string
	RPM            string
	Weight         *int64
	Length         *int64
	Equipment      string
	Mode           string
	Pickup         string
	Company        string
	Updated        string
	D2P            string
	RawJSON        string
}

// FilterSpec is the shared filter vocabulary evaluated by the shortlist and
// query engines. Zero-valued fields impose no constraint.
type FilterSpec struct {
	Tag               string
	Date              string
	OriginCity        string
	OriginState       string
	DestCity          string
	DestState         string
	MaxOriginDeadhead *int64
	MaxDestDeadhead   *int64
}

// IsZero reports whether the filter imposes no constraints at all.
func (f FilterSpec) IsZero() bool {
	return strings.TrimSpace(f.Tag) == "" &&
		strings.TrimSpace(f.Date) == "" &&
		strings.TrimSpace(f.OriginCity) == "" &&
		strings.TrimSpace(f.OriginState) == "" &&
		strings.TrimSpace(f.DestCity) == "" &&
		strings.TrimSpace(f.DestState) == "" &&
		f.MaxOriginDeadhead == nil &&
		f.MaxDestDeadhead == nil
}
