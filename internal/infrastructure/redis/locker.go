package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
	"github.com/ravito-ci/ravito-api/pkg/logger"
)

var _ ports.Locker = (*Locker)(nil)

const retryInterval = 50 * time.Millisecond

// Locker verrou distribué par clé. ttl borne la détention (un processus mort libère la clé),
// wait borne l'attente d'une clé prise.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    *logger.Logger
}

// NewLocker construit le verrou au-dessus du client Redis.
func NewLocker(rdb *goredis.Client, ttl, wait time.Duration, log *logger.Logger) *Locker {
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl, wait: wait, log: log}
}

// Acquire réessaie toutes les 50 ms jusqu'à wait ou l'échéance du contexte.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}
	lock, err := l.client.Obtain(ctx, "ravito:lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(retryInterval),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.ErrLockNotObtained
		}
		return nil, err
	}

	return func() {
		// contexte propre: celui de la requête peut déjà être annulé
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := lock.Release(rctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("libération du verrou impossible")
		}
	}, nil
}
