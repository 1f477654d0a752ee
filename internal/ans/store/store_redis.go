package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/sentinel"
)

const (
	defaultRedisKeyPrefix  = "ans:"
	defaultRedisMaxRetries = 8
)

// Redis keeps each binding as two string keys plus component slots. A
// version counter is bumped by every write; transactions WATCH it, so any
// concurrent commit aborts the others and they replay from the start.
//
// Key layout, relative to the prefix:
//
//	name:<name>      -> lowercase 0x address
//	addr:<0xaddress> -> name
//	slot:<slot key>  -> lowercase 0x address
//	version          -> write counter
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	maxRetries int
}

// RedisOption configures a Redis store.
type RedisOption func(*Redis)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithMaxRetries bounds how often a conflicting transaction is replayed.
func WithMaxRetries(n int) RedisOption {
	return func(r *Redis) {
		if n > 0 {
			r.maxRetries = n
		}
	}
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:     client,
		prefix:     defaultRedisKeyPrefix,
		maxRetries: defaultRedisMaxRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Redis) nameKey(name string) string { return r.prefix + "name:" + name }
func (r *Redis) slotKey(key string) string  { return r.prefix + "slot:" + key }
func (r *Redis) versionKey() string         { return r.prefix + "version" }

func (r *Redis) addrKey(addr domain.Address) string {
	return r.prefix + "addr:" + strings.ToLower(addr.Hex())
}

func (r *Redis) AddressOf(ctx context.Context, name string) (domain.Address, error) {
	return redisAddress(ctx, r.client, r.nameKey(name))
}

func (r *Redis) NameOf(ctx context.Context, addr domain.Address) (string, error) {
	name, err := r.client.Get(ctx, r.addrKey(addr)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get name: %w", err)
	}
	return name, nil
}

func (r *Redis) Slot(ctx context.Context, key string) (domain.Address, error) {
	return redisAddress(ctx, r.client, r.slotKey(key))
}

// RunInTx runs fn under WATCH on the version key and commits its buffered
// writes with MULTI/EXEC. Conflicts are retried up to the configured limit,
// after which sentinel.ErrConflict is returned.
func (r *Redis) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}

		err := r.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &redisTx{store: r, rtx: rtx, staged: newStaged()}
			if err := fn(ctx, tx); err != nil {
				return err
			}
			if tx.staged.empty() {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, w := range tx.staged.order {
					if w.binding {
						pipe.Set(ctx, r.nameKey(w.name), strings.ToLower(w.addr.Hex()), 0)
						pipe.Set(ctx, r.addrKey(w.addr), w.name, 0)
						continue
					}
					pipe.Set(ctx, r.slotKey(w.key), strings.ToLower(w.value.Hex()), 0)
				}
				pipe.Incr(ctx, r.versionKey())
				return nil
			})
			return err
		}, r.versionKey())

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis transaction retried %d times: %w", r.maxRetries, sentinel.ErrConflict)
}

// Health pings the server.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type redisTx struct {
	store  *Redis
	rtx    *redis.Tx
	staged *staged
}

func (t *redisTx) AddressOf(ctx context.Context, name string) (domain.Address, error) {
	if addr, ok := t.staged.names[name]; ok {
		return addr, nil
	}
	return redisAddress(ctx, t.rtx, t.store.nameKey(name))
}

func (t *redisTx) NameOf(ctx context.Context, addr domain.Address) (string, error) {
	if name, ok := t.staged.addrs[addr]; ok {
		return name, nil
	}
	name, err := t.rtx.Get(ctx, t.store.addrKey(addr)).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get name: %w", err)
	}
	return name, nil
}

func (t *redisTx) Slot(ctx context.Context, key string) (domain.Address, error) {
	if v, ok := t.staged.slots[key]; ok {
		return v, nil
	}
	return redisAddress(ctx, t.rtx, t.store.slotKey(key))
}

func (t *redisTx) PutBinding(ctx context.Context, addr domain.Address, name string) error {
	if _, err := t.AddressOf(ctx, name); err == nil {
		return ErrNameBound
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	if _, err := t.NameOf(ctx, addr); err == nil {
		return ErrAddressBound
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	t.staged.bind(addr, name)
	return nil
}

func (t *redisTx) InsertSlot(ctx context.Context, key string, value domain.Address) error {
	if _, err := t.Slot(ctx, key); err == nil {
		return sentinel.ErrAlreadyUsed
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	t.staged.setSlot(key, value, true)
	return nil
}

func (t *redisTx) UpdateSlot(ctx context.Context, key string, value domain.Address) error {
	if _, err := t.Slot(ctx, key); err != nil {
		return err
	}
	t.staged.setSlot(key, value, false)
	return nil
}

type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func redisAddress(ctx context.Context, c redisGetter, key string) (domain.Address, error) {
	raw, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Address{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Address{}, fmt.Errorf("get %s: %w", key, err)
	}
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		return domain.Address{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return addr, nil
}
