// Package snowflake generates time ordered 64 bit identifiers without a central
// coordinator.
//
// An identifier packs, from the most significant bit down:
//
//	41 bits  milliseconds since Epoch
//	 5 bits  datacenter id
//	 5 bits  machine id
//	12 bits  per millisecond sequence
//
// The timestamp field overflows roughly 69 years after Epoch (around 2090).
// Identifiers from one Generator are strictly increasing. Across generators they
// are unique as long as every (datacenter id, machine id) pair is unique.
package snowflake

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// Epoch is 2021-01-01T00:00:00Z in unix milliseconds.
	Epoch int64 = 1609459200000

	TimestampBits    = 41
	DatacenterIDBits = 5
	MachineIDBits    = 5
	SequenceBits     = 12

	MaxDatacenterID = (1 << DatacenterIDBits) - 1
	MaxMachineID    = (1 << MachineIDBits) - 1
	MaxSequence     = (1 << SequenceBits) - 1

	MachineIDShift    = SequenceBits
	DatacenterIDShift = SequenceBits + MachineIDBits
	TimestampShift    = SequenceBits + MachineIDBits + DatacenterIDBits
)

var (
	// ErrInvalidConfig is returned by New when a datacenter or machine id does
	// not fit in its bit field.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrClockRegression is returned by NextID when the clock reads earlier than
	// the last issued timestamp. The generator never guesses under clock skew.
	ErrClockRegression = errors.New("clock moved backwards")
)

// Clock returns the current time. Only millisecond precision is used.
type Clock func() time.Time

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(clock Clock) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

// Generator issues identifiers. It is safe for concurrent use; the timestamp
// and sequence pair is only touched while holding mu.
type Generator struct {
	datacenterID int64
	machineID    int64
	clock        Clock

	mu            sync.Mutex
	lastTimestamp int64
	sequence      int64
}

// New creates a generator for the given datacenter and machine ids, each in
// [0, 31].
func New(datacenterID, machineID int64, opts ...Option) (*Generator, error) {
	if datacenterID < 0 || datacenterID > MaxDatacenterID {
		return nil, fmt.Errorf("datacenter id %d out of range [0, %d]: %w",
			datacenterID, MaxDatacenterID, ErrInvalidConfig)
	}

	if machineID < 0 || machineID > MaxMachineID {
		return nil, fmt.Errorf("machine id %d out of range [0, %d]: %w",
			machineID, MaxMachineID, ErrInvalidConfig)
	}

	g := &Generator{
		datacenterID:  datacenterID,
		machineID:     machineID,
		clock:         time.Now,
		lastTimestamp: -1,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// NextID returns an identifier strictly greater than every identifier this
// generator returned before.
//
// When the sequence is exhausted within one millisecond NextID spins until the
// clock advances. The spin is not cancellable.
func (g *Generator) NextID() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.millis()

	if now < g.lastTimestamp {
		return 0, fmt.Errorf("clock is %dms behind last issued timestamp: %w",
			g.lastTimestamp-now, ErrClockRegression)
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & MaxSequence
		if g.sequence == 0 {
			now = g.waitNextMillis(g.lastTimestamp)
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = now

	return ID((now-Epoch)<<TimestampShift |
		g.datacenterID<<DatacenterIDShift |
		g.machineID<<MachineIDShift |
		g.sequence), nil
}

// DatacenterID returns the datacenter id baked into every identifier.
func (g *Generator) DatacenterID() int64 {
	return g.datacenterID
}

// MachineID returns the machine id baked into every identifier.
func (g *Generator) MachineID() int64 {
	return g.machineID
}

func (g *Generator) millis() int64 {
	return g.clock().UnixMilli()
}

func (g *Generator) waitNextMillis(last int64) int64 {
	ts := g.millis()
	for ts <= last {
		ts = g.millis()
	}

	return ts
}
