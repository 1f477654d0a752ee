package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"ans/internal/ans/events"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/sentinel"
)

const (
	defaultPostgresTxTimeout = 5 * time.Second

	pgUniqueViolation = "23505"

	constraintNamePK      = "name_bindings_pkey"
	constraintAddressUniq = "name_bindings_address_key"
)

// Postgres persists bindings in the name_bindings table and component state
// in component_slots. The schema lives in migrations/.
type Postgres struct {
	db            *sql.DB
	timeout       time.Duration
	notifyChannel string
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithTxTimeout bounds transactions whose context carries no deadline.
func WithTxTimeout(d time.Duration) PostgresOption {
	return func(p *Postgres) {
		p.timeout = d
	}
}

// WithNotifyChannel makes every binding issue pg_notify(channel, event)
// inside its transaction, so listeners see it only after commit.
func WithNotifyChannel(channel string) PostgresOption {
	return func(p *Postgres) {
		p.notifyChannel = channel
	}
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{db: db, timeout: defaultPostgresTxTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

func (p *Postgres) AddressOf(ctx context.Context, name string) (domain.Address, error) {
	return pgAddressOf(ctx, p.db, name)
}

func (p *Postgres) NameOf(ctx context.Context, addr domain.Address) (string, error) {
	return pgNameOf(ctx, p.db, addr)
}

func (p *Postgres) Slot(ctx context.Context, key string) (domain.Address, error) {
	return pgSlot(ctx, p.db, key, false)
}

// RunInTx runs fn inside one SQL transaction, rolling back on any error.
func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	sqlTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(ctx, &postgresTx{tx: sqlTx, notifyChannel: p.notifyChannel}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction commit timed out")
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Health pings the database.
func (p *Postgres) Health(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type postgresTx struct {
	tx            *sql.Tx
	notifyChannel string
}

func (t *postgresTx) AddressOf(ctx context.Context, name string) (domain.Address, error) {
	return pgAddressOf(ctx, t.tx, name)
}

func (t *postgresTx) NameOf(ctx context.Context, addr domain.Address) (string, error) {
	return pgNameOf(ctx, t.tx, addr)
}

// Slot locks the row until the transaction ends, serializing owner checks
// against concurrent transfers.
func (t *postgresTx) Slot(ctx context.Context, key string) (domain.Address, error) {
	return pgSlot(ctx, t.tx, key, true)
}

func (t *postgresTx) PutBinding(ctx context.Context, addr domain.Address, name string) error {
	assignedAt := time.Now().UTC()
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO name_bindings (name, address, assigned_at) VALUES ($1, $2, $3)`,
		name, addr[:], assignedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			switch pgErr.ConstraintName {
			case constraintNamePK:
				return ErrNameBound
			case constraintAddressUniq:
				return ErrAddressBound
			}
		}
		return fmt.Errorf("insert binding: %w", err)
	}

	if t.notifyChannel == "" {
		return nil
	}
	payload, err := json.Marshal(events.NameAssigned{Address: addr, Name: name, AssignedAt: assignedAt})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, t.notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("notify binding: %w", err)
	}
	return nil
}

func (t *postgresTx) InsertSlot(ctx context.Context, key string, value domain.Address) error {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO component_slots (slot_key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (slot_key) DO NOTHING`,
		key, value[:],
	)
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	if n == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (t *postgresTx) UpdateSlot(ctx context.Context, key string, value domain.Address) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE component_slots SET value = $2, updated_at = now() WHERE slot_key = $1`,
		key, value[:],
	)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func pgAddressOf(ctx context.Context, q querier, name string) (domain.Address, error) {
	var raw []byte
	err := q.QueryRowContext(ctx, `SELECT address FROM name_bindings WHERE name = $1`, name).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, sentinel.ErrNotFound
		}
		return domain.Address{}, fmt.Errorf("find address by name: %w", err)
	}
	return domain.BytesToAddress(raw), nil
}

func pgNameOf(ctx context.Context, q querier, addr domain.Address) (string, error) {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM name_bindings WHERE address = $1`, addr[:]).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("find name by address: %w", err)
	}
	return name, nil
}

func pgSlot(ctx context.Context, q querier, key string, forUpdate bool) (domain.Address, error) {
	query := `SELECT value FROM component_slots WHERE slot_key = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var raw []byte
	if err := q.QueryRowContext(ctx, query, key).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, sentinel.ErrNotFound
		}
		return domain.Address{}, fmt.Errorf("read slot: %w", err)
	}
	return domain.BytesToAddress(raw), nil
}
