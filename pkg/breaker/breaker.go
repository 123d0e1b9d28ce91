package breaker

import (
	"errors"
	"sync"
	"time"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

type Breaker interface {
	Call(fn func() error) error
	Reset()
}

type breaker struct {
	mu sync.Mutex

	st state
	// sliding window of the last windowSize outcomes, true = failed
	window []bool
	pos    int
	// failure share of the window that trips the breaker
	threshold float64
	// how long the breaker stays open before probing
	cooldown time.Duration
	// consecutive half-open successes required to close again
	recovery int

	successCount  int
	lastTrippedAt time.Time
}

func New(windowSize int, cooldown time.Duration, threshold float64, recovery int) Breaker {
	return &breaker{
		st:        closed,
		window:    make([]bool, windowSize),
		threshold: threshold,
		cooldown:  cooldown,
		recovery:  recovery,
	}
}

func (b *breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.st == open {
		if time.Since(b.lastTrippedAt) <= b.cooldown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.st = halfOpen
		b.successCount = 0
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.window[b.pos] = err != nil
	b.pos = (b.pos + 1) % len(b.window)

	if b.st == halfOpen {
		if err != nil {
			b.trip()
		} else {
			b.successCount++
			if b.successCount > b.recovery {
				b.Reset()
			}
		}
		return err
	}

	fails := 0
	for _, failed := range b.window {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(len(b.window)) >= b.threshold {
		b.trip()
	}

	return err
}

func (b *breaker) trip() {
	b.st = open
	b.successCount = 0
	b.lastTrippedAt = time.Now()
}

func (b *breaker) Reset() {
	for i := range b.window {
		b.window[i] = false
	}
	b.pos = 0
	b.successCount = 0
	b.st = closed
}
