// Package snowflake generates time-ordered 63-bit identifiers for complaint records.
package snowflake

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Custom epoch: January 1, 2026 00:00:00 UTC.
const epoch int64 = 1767225600000

// Bit layout: 41 bits of milliseconds, 10 bits of node, 12 bits of sequence.
const (
	nodeBits     = 10
	sequenceBits = 12

	maxNode     = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits
)

// ID is a snowflake identifier.
type ID int64

func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Time returns the wall-clock time embedded in the ID.
func (id ID) Time() time.Time {
	return time.UnixMilli((int64(id) >> timestampShift) + epoch)
}

// Generator produces unique, strictly increasing IDs for one node.
type Generator struct {
	mu       sync.Mutex
	node     int64
	sequence int64
	lastTime int64
	now      func() int64
}

// NewGenerator creates a generator for the given node, which must be in [0, 1023].
func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > maxNode {
		return nil, fmt.Errorf("snowflake: node must be between 0 and %d", maxNode)
	}
	return &Generator{
		node: node,
		now:  func() int64 { return time.Now().UnixMilli() - epoch },
	}, nil
}

// Generate returns the next ID. A clock that steps backwards keeps the last
// observed millisecond so IDs never decrease.
func (g *Generator) Generate() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now < g.lastTime {
		now = g.lastTime
	}

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			// Sequence exhausted; wait for the next millisecond.
			for now <= g.lastTime {
				now = g.now()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTime = now

	return ID((now << timestampShift) | (g.node << nodeShift) | g.sequence)
}
