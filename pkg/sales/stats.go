package sales

import "sync/atomic"

// Stats counts what the listener has seen since start.
type Stats struct {
	received   atomic.Uint64
	removed    atomic.Uint64
	duplicates atomic.Uint64
	nonSales   atomic.Uint64
	sales      atomic.Uint64
	sweeps     atomic.Uint64
	failures   atomic.Uint64

	dispatchFailures atomic.Uint64
}

type StatsSnapshot struct {
	Received   uint64 `json:"received"`
	Removed    uint64 `json:"removed"`
	Duplicates uint64 `json:"duplicates"`
	NonSales   uint64 `json:"nonSales"`
	Sales      uint64 `json:"sales"`
	Sweeps     uint64 `json:"sweeps"`
	Failures   uint64 `json:"failures"`

	DispatchFailures uint64 `json:"dispatchFailures"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Received:   s.received.Load(),
		Removed:    s.removed.Load(),
		Duplicates: s.duplicates.Load(),
		NonSales:   s.nonSales.Load(),
		Sales:      s.sales.Load(),
		Sweeps:     s.sweeps.Load(),
		Failures:   s.failures.Load(),

		DispatchFailures: s.dispatchFailures.Load(),
	}
}
