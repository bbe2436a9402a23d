// Package orderno generates the 23-digit order numbers printed on receipts.
//
// A number is the local wall-clock second (YYYYMMDDHHMMSS), a three-digit
// process-wide sequence and a six-digit cryptographically random suffix. The
// storage unique constraint on orders.number remains the final arbiter.
package orderno

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Length is the fixed width of every order number.
const Length = 23

const (
	timeLayout  = "20060102150405"
	seqModulo   = 1000
	suffixRange = 1_000_000
	// largest multiple of suffixRange that fits in uint32
	suffixLimit = (1 << 32) / suffixRange * suffixRange
)

// Generator is safe for concurrent use.
type Generator struct {
	// seq always holds a value in [0, seqModulo).
	seq     atomic.Uint32
	now     func() time.Time
	entropy io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithEntropy replaces the random source used for the suffix.
func WithEntropy(r io.Reader) Option {
	return func(g *Generator) { g.entropy = r }
}

// WithSequenceStart fixes the starting sequence value, reduced modulo 1000.
func WithSequenceStart(n uint32) Option {
	return func(g *Generator) { g.seq.Store(n % seqModulo) }
}

// New returns a generator whose sequence starts at a random value.
func New(opts ...Option) *Generator {
	g := &Generator{now: time.Now, entropy: rand.Reader}
	g.seq.Store(randomStart())
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a fresh order number.
func (g *Generator) Generate() string {
	stamp := g.now().Format(timeLayout)
	return fmt.Sprintf("%s%03d%06d", stamp, g.nextSeq(), g.suffix())
}

func (g *Generator) nextSeq() uint32 {
	for {
		cur := g.seq.Load()
		next := (cur + 1) % seqModulo
		if g.seq.CompareAndSwap(cur, next) {
			return next
		}
	}
}

func (g *Generator) suffix() uint32 {
	var buf [4]byte
	for {
		if _, err := io.ReadFull(g.entropy, buf[:]); err != nil {
			panic(fmt.Sprintf("orderno: read entropy: %v", err))
		}
		v := binary.BigEndian.Uint32(buf[:])
		if v < suffixLimit {
			return v % suffixRange
		}
	}
}

func randomStart() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return uint32(time.Now().UnixNano()) % seqModulo
	}
	return binary.BigEndian.Uint32(buf[:]) % seqModulo
}

var std = New()

// Default returns the process-wide generator.
func Default() *Generator { return std }

// Generate draws a number from the process-wide generator.
func Generate() string { return std.Generate() }

// Valid reports whether s has the order number shape: 23 digits whose first
// fourteen form a real timestamp.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	_, err := time.Parse(timeLayout, s[:len(timeLayout)])
	return err == nil
}
