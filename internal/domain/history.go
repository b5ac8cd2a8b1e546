package domain

import "time"

// HistoryEntry is one completed search with the hotels it produced.
// Rows are append-only; nothing here is ever updated or deleted.
type HistoryEntry struct {
	Command string
	At      time.Time
	Hotels  []HistoryHotel
}

type HistoryHotel struct {
	Name    string
	Address string
}
