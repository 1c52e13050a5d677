package sse

import (
	"log/slog"
	"sort"

	"github.com/haasonsaas/conduit/internal/jsonrepair"
	"github.com/haasonsaas/conduit/pkg/conduit"
	"github.com/haasonsaas/conduit/pkg/schema"
)

const (
	maxToolCallIndex  = 100
	maxArgsBufferSize = 100000
)

type toolCallAccumulator struct {
	id        string
	name      string
	argsBytes int // tracks writes even past truncation, for the warning log
	args      []byte
}

// ToolCallAccumulators tracks in-progress tool-call argument fragments by
// their provider-assigned index, per §4.5's per-index accumulator state.
type ToolCallAccumulators struct {
	byIndex map[int]*toolCallAccumulator
	order   []int
}

// NewToolCallAccumulators returns an empty accumulator set.
func NewToolCallAccumulators() *ToolCallAccumulators {
	return &ToolCallAccumulators{byIndex: make(map[int]*toolCallAccumulator)}
}

// Append records a fragment for the tool call at index, creating the
// accumulator on first sight. Indices outside [0,100] are dropped with a
// warning. Returns the current full argument buffer as a string (the
// "argumentsFragment" reported on the chunk), or ok=false if the index was
// out of range.
func (a *ToolCallAccumulators) Append(index int, id, name, argsFragment string) (argumentsFragment string, ok bool) {
	if index < 0 || index > maxToolCallIndex {
		slog.Warn("sse: dropping tool-call fragment with out-of-range index", "index", index)
		return "", false
	}

	acc, exists := a.byIndex[index]
	if !exists {
		acc = &toolCallAccumulator{}
		a.byIndex[index] = acc
		a.order = append(a.order, index)
	}
	if id != "" {
		acc.id = id
	}
	if name != "" {
		acc.name = name
	}
	if argsFragment != "" {
		acc.argsBytes += len(argsFragment)
		remaining := maxArgsBufferSize - len(acc.args)
		if remaining <= 0 {
			slog.Warn("sse: tool-call argument buffer truncated at cap", "index", index, "tool", acc.name, "dropped_bytes", acc.argsBytes-len(acc.args))
		} else if len(argsFragment) > remaining {
			acc.args = append(acc.args, argsFragment[:remaining]...)
			slog.Warn("sse: tool-call argument buffer truncated at cap", "index", index, "tool", acc.name, "dropped_bytes", acc.argsBytes-len(acc.args))
		} else {
			acc.args = append(acc.args, argsFragment...)
		}
	}
	return string(acc.args), true
}

// Finalize parses every accumulated tool call's argument buffer into a
// ToolCall, repairing malformed JSON once before dropping a call with a
// warning. Order is ascending by index regardless of arrival order, per
// the concurrency model's "ascending index order for reproducibility" rule.
func (a *ToolCallAccumulators) Finalize() []conduit.ToolCall {
	ordered := append([]int(nil), a.order...)
	sort.Ints(ordered)

	calls := make([]conduit.ToolCall, 0, len(ordered))
	for _, idx := range ordered {
		acc := a.byIndex[idx]
		args, err := schema.Parse(acc.args)
		if err != nil {
			repaired, repairErr := jsonrepair.Repair(string(acc.args))
			if repairErr != nil {
				slog.Warn("sse: dropping tool call after repair failure", "index", idx, "tool", acc.name, "err", repairErr)
				continue
			}
			args, err = schema.Parse([]byte(repaired))
			if err != nil {
				slog.Warn("sse: dropping tool call after repaired parse failure", "index", idx, "tool", acc.name, "err", err)
				continue
			}
		}
		calls = append(calls, conduit.ToolCall{ID: acc.id, ToolName: acc.name, Arguments: args})
	}
	return calls
}

// Empty reports whether any fragments have been accumulated.
func (a *ToolCallAccumulators) Empty() bool { return len(a.order) == 0 }
