// Package numerator provides document auto-numbering.
// Numbers follow the pattern PREFIX-YEAR-XXXXX (e.g. INV-2026-00042) and
// are allocated from a database sequence table.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Strategy defines the number allocation strategy.
type Strategy int

const (
	// StrategyStrict allocates every number with an UPSERT..RETURNING.
	// Sequential without gaps; use for sale invoices.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory. Faster, but a
	// restart loses the unused tail of the range. Acceptable for purchase
	// entries and adjustments where gaps do not matter.
	StrategyCached
)

// Options configures number generation.
type Options struct {
	Strategy Strategy

	// RangeSize is how many numbers StrategyCached reserves at once.
	// Default 50.
	RangeSize int64
}

// DefaultOptions returns the strict strategy.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Querier is the database access the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration for one document type.
type Config struct {
	// Prefix is prepended to all numbers (e.g. "INV", "PUR", "ADJ")
	Prefix string

	// PadWidth is the minimum counter width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults for a prefix.
func DefaultConfig(prefix string) Config {
	return Config{Prefix: prefix, PadWidth: 5}
}

type cachedRange struct {
	current int64
	max     int64
}

// Service allocates document numbers. Safe for concurrent use.
type Service struct {
	querier Querier

	mu     sync.Mutex
	ranges map[string]*cachedRange
}

// New creates a numerator backed by the given querier.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// NextNumber allocates the next number for the config's prefix and year.
func (s *Service) NextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	year := period.Year()
	key := fmt.Sprintf("%s_%d", cfg.Prefix, year)

	var num int64
	var err error
	switch opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, cfg.Prefix, year, key, opts)
	default:
		num, err = s.nextStrict(ctx, cfg.Prefix, year)
	}
	if err != nil {
		return "", err
	}

	return s.format(cfg, year, num), nil
}

// nextStrict fetches one number from the database per call.
func (s *Service) nextStrict(ctx context.Context, prefix string, year int) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (sequence_type, year, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (sequence_type, year)
		DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, prefix, year).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("allocate number %s/%d: %w", prefix, year, err)
	}
	return num, nil
}

// nextCached serves from an in-memory range, refilling from the database
// when exhausted.
func (s *Service) nextCached(ctx context.Context, prefix string, year int, key string, opts *Options) (int64, error) {
	rangeSize := opts.RangeSize
	if rangeSize <= 0 {
		rangeSize = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.ranges[key]
	if !ok || r.current >= r.max {
		var newMax int64
		err := s.querier.QueryRow(ctx, `
			INSERT INTO sys_sequences (sequence_type, year, current_val)
			VALUES ($1, $2, $3)
			ON CONFLICT (sequence_type, year)
			DO UPDATE SET current_val = sys_sequences.current_val + $3
			RETURNING current_val
		`, prefix, year, rangeSize).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("allocate range %s/%d: %w", prefix, year, err)
		}
		r = &cachedRange{current: newMax - rangeSize, max: newMax}
		s.ranges[key] = r
	}

	r.current++
	return r.current, nil
}

func (s *Service) format(cfg Config, year int, num int64) string {
	width := cfg.PadWidth
	if width <= 0 {
		width = 5
	}
	return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, year, width, num)
}
