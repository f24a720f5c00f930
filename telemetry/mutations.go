package telemetry

import (
	"fmt"
	"strings"
)

// TraitDelta is one trait change between parent and child.
type TraitDelta struct {
	Trait string
	From  float64
	To    float64
}

// MutationEvent records a significant parent to child change.
type MutationEvent struct {
	Tick          int64        `csv:"tick"`
	ParentSpecies int          `csv:"parent_species"`
	NewSpecies    int          `csv:"new_species"`
	EntityID      uint32       `csv:"entity_id"` // Zero when the child was not placed
	LifeType      string       `csv:"life_type"`
	Distance      float64      `csv:"distance"`
	Cause         string       `csv:"cause"`
	Context       string       `csv:"context"`
	Summary       string       `csv:"deltas"`
	Deltas        []TraitDelta `csv:"-"`
}

// Speciated reports whether the event assigned a new species id.
func (e MutationEvent) Speciated() bool { return e.NewSpecies != e.ParentSpecies }

// SummarizeDeltas renders deltas as "trait:+0.12 trait:-0.05".
func SummarizeDeltas(deltas []TraitDelta) string {
	var b strings.Builder
	for i, d := range deltas {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%+.3f", d.Trait, d.To-d.From)
	}
	return b.String()
}

// MutationLog is a bounded ring buffer of mutation events.
type MutationLog struct {
	buf  []MutationEvent
	head int // Next write position
	n    int
}

// NewMutationLog creates a log holding at most size events.
func NewMutationLog(size int) *MutationLog {
	if size < 1 {
		size = 1
	}
	return &MutationLog{buf: make([]MutationEvent, size)}
}

// Add appends e, evicting the oldest event when full.
func (l *MutationLog) Add(e MutationEvent) {
	l.buf[l.head] = e
	l.head = (l.head + 1) % len(l.buf)
	if l.n < len(l.buf) {
		l.n++
	}
}

// Len returns the number of stored events.
func (l *MutationLog) Len() int { return l.n }

// at returns the k-th newest event.
func (l *MutationLog) at(k int) MutationEvent {
	return l.buf[(l.head-1-k+2*len(l.buf))%len(l.buf)]
}

// Events returns all stored events, newest first.
func (l *MutationLog) Events() []MutationEvent {
	out := make([]MutationEvent, l.n)
	for k := 0; k < l.n; k++ {
		out[k] = l.at(k)
	}
	return out
}

// ForSpecies returns up to limit newest events that touch species id.
func (l *MutationLog) ForSpecies(id, limit int) []MutationEvent {
	var out []MutationEvent
	for k := 0; k < l.n && len(out) < limit; k++ {
		e := l.at(k)
		if e.ParentSpecies == id || e.NewSpecies == id {
			out = append(out, e)
		}
	}
	return out
}

// Since returns events recorded at or after tick, oldest first.
func (l *MutationLog) Since(tick int64) []MutationEvent {
	var out []MutationEvent
	for k := l.n - 1; k >= 0; k-- {
		if e := l.at(k); e.Tick >= tick {
			out = append(out, e)
		}
	}
	return out
}
