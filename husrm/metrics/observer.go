package metrics

import (
	"runtime"
)

const bytesPerMiB = 1024 * 1024

// MemoryObserver tracks heap usage during a run. Observers never influence
// mining control flow.
type MemoryObserver interface {
	Reset()
	// Sample records the current usage in MiB and returns it.
	Sample() float64
	// Peak returns the largest sample since the last Reset.
	Peak() float64
}

// RuntimeObserver samples runtime.MemStats.HeapAlloc. ReadMemStats stops the
// world, so only every Nth call reads fresh statistics.
type RuntimeObserver struct {
	every uint64
	calls uint64
	last  float64
	peak  float64
}

// NewRuntimeObserver reads memory statistics on every call to Sample when
// every <= 1, otherwise on every Nth call.
func NewRuntimeObserver(every int) *RuntimeObserver {
	if every < 1 {
		every = 1
	}
	return &RuntimeObserver{every: uint64(every)}
}

func (o *RuntimeObserver) Reset() {
	o.calls = 0
	o.last = 0
	o.peak = 0
}

func (o *RuntimeObserver) Sample() float64 {
	o.calls++
	if o.calls != 1 && o.calls%o.every != 0 {
		return o.last
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	o.last = float64(ms.HeapAlloc) / bytesPerMiB
	if o.last > o.peak {
		o.peak = o.last
	}
	return o.last
}

func (o *RuntimeObserver) Peak() float64 { return o.peak }

// NopObserver records nothing.
type NopObserver struct{}

func (NopObserver) Reset()          {}
func (NopObserver) Sample() float64 { return 0 }
func (NopObserver) Peak() float64   { return 0 }
