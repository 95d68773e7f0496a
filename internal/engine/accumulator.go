package engine

import (
	"sort"
	"strings"

	"github.com/jackzampolin/parley/internal/providers"
)

// DeltaAccumulator reconstructs complete tool-call requests from the
// fragments a streamed completion emits. Fragments are keyed by slot index;
// fragments for different slots may interleave. A non-empty id or name in a
// later fragment overwrites the stored value (the protocol may send it once
// or repeat it); argument fragments always append in arrival order.
type DeltaAccumulator struct {
	entries map[int]*callEntry
}

type callEntry struct {
	id   string
	name string
	args strings.Builder
}

// NewDeltaAccumulator returns an empty accumulator for one streamed round.
func NewDeltaAccumulator() *DeltaAccumulator {
	return &DeltaAccumulator{entries: make(map[int]*callEntry)}
}

// Add merges one fragment into the accumulator.
func (a *DeltaAccumulator) Add(d providers.ToolCallDelta) {
	entry, ok := a.entries[d.Index]
	if !ok {
		entry = &callEntry{}
		a.entries[d.Index] = entry
	}
	if d.ID != "" {
		entry.id = d.ID
	}
	if d.Name != "" {
		entry.name = d.Name
	}
	entry.args.WriteString(d.Arguments)
}

// Len returns how many distinct slots have been seen.
func (a *DeltaAccumulator) Len() int {
	return len(a.entries)
}

// Finalize returns the accumulated requests ordered by slot index. It does
// not parse the argument strings; callers must attempt the JSON parse.
func (a *DeltaAccumulator) Finalize() []providers.ToolCall {
	if len(a.entries) == 0 {
		return nil
	}

	indices := make([]int, 0, len(a.entries))
	for idx := range a.entries {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	calls := make([]providers.ToolCall, 0, len(indices))
	for _, idx := range indices {
		e := a.entries[idx]
		calls = append(calls, providers.NewToolCall(e.id, e.name, e.args.String()))
	}
	return calls
}
