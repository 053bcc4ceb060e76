// Package signal standardizes payloads shared between data ingestion and strategy layers.
package signal

import "time"

// Bar models a single closed price bar consumed by the indicator layer.
type Bar struct {
	Symbol string
	Close  float64
	Ts     time.Time
}

// Closes extracts the closing prices of a bar sequence in order.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Action enumerates the decisions the strategy layer can emit per evaluation.
type Action string

const (
	// Hold means no order this cycle.
	Hold Action = "HOLD"
	// EntryLong opens a new long position from flat.
	EntryLong Action = "ENTRY_LONG"
	// EntryShort opens a new short position from flat.
	EntryShort Action = "ENTRY_SHORT"
	// ExitLong closes the full long position.
	ExitLong Action = "EXIT_LONG"
	// ExitShort covers the full short position.
	ExitShort Action = "EXIT_SHORT"
)

// IsEntry reports whether the action opens a position from flat.
func (a Action) IsEntry() bool { return a == EntryLong || a == EntryShort }

// IsExit reports whether the action closes an open position.
func (a Action) IsExit() bool { return a == ExitLong || a == ExitShort }

// Decision expresses the outcome of one strategy evaluation for one symbol.
type Decision struct {
	Symbol string
	Action Action
	Reason string
	Ts     time.Time
}
