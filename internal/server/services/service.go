// Package services contains the server-side business logic. Every
// operation resolves the caller from the request context, applies the
// operation's rate limit, validates its input, checks record ownership and
// then delegates to the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/logging"
	"github.com/dmitrijs2005/focustodo/internal/server/auth"
	"github.com/dmitrijs2005/focustodo/internal/server/metrics"
	"github.com/dmitrijs2005/focustodo/internal/server/repositories/repomanager"
)

// Limiter admits or rejects one call of the named operation for key. On
// rejection it reports how long the caller should wait.
type Limiter interface {
	Allow(name, key string) (bool, time.Duration)
}

// Deps are the collaborators shared by all services. DB may be nil when
// Repos is an in-memory manager; Limiter, Metrics, Logger and Clock are
// optional.
type Deps struct {
	DB      *sql.DB
	Repos   repomanager.RepositoryManager
	Limiter Limiter
	Metrics *metrics.Metrics
	Logger  logging.Logger
	Clock   func() time.Time
}

type base struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	limiter     Limiter
	metrics     *metrics.Metrics
	logger      logging.Logger
	clock       func() time.Time
}

func newBase(d Deps) base {
	b := base{
		db:          d.DB,
		repomanager: d.Repos,
		limiter:     d.Limiter,
		metrics:     d.Metrics,
		logger:      d.Logger,
		clock:       d.Clock,
	}
	if b.logger == nil {
		b.logger = logging.Nop{}
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	return b
}

func (b *base) now() time.Time {
	return b.clock().UTC()
}

// conn is the handle repositories are bound to outside transactions.
func (b *base) conn() dbx.DBTX {
	if b.db == nil {
		return nil
	}
	return b.db
}

// withTx runs fn in a transaction. Without a database (in-memory storage)
// fn runs directly.
func (b *base) withTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if b.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, b.db, nil, fn)
}

// snapshot runs fn in a read-only repeatable-read transaction so that
// several reads observe the same state.
func (b *base) snapshot(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if b.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, b.db, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

// caller returns the authenticated user id.
func (b *base) caller(ctx context.Context) (string, error) {
	return auth.UserIDFromContext(ctx)
}

// admit applies the rate limit of operation to userID.
func (b *base) admit(operation, userID string) error {
	if b.limiter == nil {
		return nil
	}
	ok, retryAfter := b.limiter.Allow(operation, userID)
	if ok {
		return nil
	}
	if b.metrics != nil {
		b.metrics.RateLimited(operation)
	}
	return common.NewRateLimitError(operation, retryAfter)
}

// begin resolves the caller and applies the rate limit of operation.
func (b *base) begin(ctx context.Context, operation string) (string, error) {
	userID, err := b.caller(ctx)
	if err != nil {
		return "", err
	}
	if err := b.admit(operation, userID); err != nil {
		return "", err
	}
	return userID, nil
}

// fetchOwned loads a record by id and checks it belongs to userID. Ids that
// are not UUIDs cannot exist and are reported as not found.
func fetchOwned[T any](ctx context.Context, id, userID, entity, action string,
	get func(context.Context, string) (T, error), owner func(T) string) (T, error) {
	var zero T
	if _, err := uuid.Parse(id); err != nil {
		return zero, common.NotFoundError(entity)
	}

	rec, err := get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return zero, common.NotFoundError(entity)
		}
		return zero, fmt.Errorf("load %s: %w", entity, err)
	}
	if owner(rec) != userID {
		return zero, common.NotAuthorizedError(action, strings.ToLower(entity))
	}
	return rec, nil
}

// vanished reports a record deleted after its ownership check as not found
// rather than letting the bare store error escape.
func vanished[T any](entity string, rec T, err error) (T, error) {
	if errors.Is(err, common.ErrNotFound) {
		var zero T
		return zero, common.NotFoundError(entity)
	}
	return rec, err
}

func newID() string {
	return uuid.NewString()
}
