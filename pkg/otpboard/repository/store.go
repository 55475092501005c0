// Package repository persists accounts, tags and share links.
//
// Every call runs under a deadline so a stuck database surfaces as an error
// instead of a hung request. Multi-row mutations (tag replacement, deletes)
// run inside a single transaction.
package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/mikepea/otpboard/pkg/otpboard/models"
	"gorm.io/gorm"
)

// DefaultTimeout bounds each repository call when no timeout is configured
const DefaultTimeout = 5 * time.Second

// Store groups the repositories sharing one database handle
type Store struct {
	Accounts   *AccountRepository
	Tags       *TagRepository
	ShareLinks *ShareLinkRepository
}

// Option customizes a Store
type Option func(*base)

// WithTimeout sets the per-call deadline
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the logger used for best-effort write warnings
func WithLogger(l *slog.Logger) Option {
	return func(b *base) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDefaultPeriod sets the period given to accounts created without one
func WithDefaultPeriod(seconds int) Option {
	return func(b *base) {
		if seconds > 0 {
			b.defaultPeriod = seconds
		}
	}
}

// New creates the repositories over db
func New(db *gorm.DB, opts ...Option) *Store {
	b := base{db: db, timeout: DefaultTimeout, logger: slog.Default(), defaultPeriod: models.DefaultPeriod}
	for _, opt := range opts {
		opt(&b)
	}
	return &Store{
		Accounts:   &AccountRepository{base: b},
		Tags:       &TagRepository{base: b},
		ShareLinks: newShareLinkRepository(b),
	}
}

type base struct {
	db            *gorm.DB
	timeout       time.Duration
	logger        *slog.Logger
	defaultPeriod int
}

// session returns a handle bound to ctx with the configured deadline applied
func (b base) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}
