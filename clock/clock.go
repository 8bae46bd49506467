package clock

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// Source is the time reference of the ledger. Heights and epochs never go
// backwards.
type Source interface {
	BlockHeight() uint64
	Epoch() uint64
	Now() time.Time
}

// BlockClock derives block heights and epochs from wall-clock time elapsed
// since genesis. A wall clock stepped backwards holds the height at the
// highest one handed out until it catches up.
type BlockClock struct {
	genesis       time.Time
	blockInterval time.Duration
	epochLength   uint64

	highest *atomic.Uint64
	now     func() time.Time
}

func NewBlockClock(genesis time.Time, blockInterval time.Duration, epochLength uint64) (*BlockClock, error) {
	if blockInterval <= 0 {
		return nil, fmt.Errorf("block interval must be positive, got %v", blockInterval)
	}
	if epochLength == 0 {
		return nil, fmt.Errorf("epoch length must be positive")
	}

	return &BlockClock{
		genesis:       genesis,
		blockInterval: blockInterval,
		epochLength:   epochLength,
		highest:       atomic.NewUint64(0),
		now:           time.Now,
	}, nil
}

func (c *BlockClock) BlockHeight() uint64 {
	var height uint64
	if elapsed := c.now().Sub(c.genesis); elapsed > 0 {
		height = uint64(elapsed / c.blockInterval)
	}

	for {
		highest := c.highest.Load()
		if height <= highest {
			return highest
		}
		if c.highest.CompareAndSwap(highest, height) {
			return height
		}
	}
}

func (c *BlockClock) Epoch() uint64 {
	return c.BlockHeight() / c.epochLength
}

func (c *BlockClock) Now() time.Time {
	return c.now()
}

// Manual is a Source driven by hand, used by tests and offline tooling
type Manual struct {
	mu     sync.Mutex
	height uint64
	epoch  uint64
	now    time.Time
}

func NewManual(height, epoch uint64) *Manual {
	return &Manual{
		height: height,
		epoch:  epoch,
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *Manual) BlockHeight() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height
}

func (m *Manual) Epoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) SetHeight(height uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height = height
}

func (m *Manual) SetEpoch(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch = epoch
}

func (m *Manual) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the height forward by n blocks
func (m *Manual) Advance(n uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.height += n
}
