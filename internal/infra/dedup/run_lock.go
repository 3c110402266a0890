package dedup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	runLockKey        = "alerts:run-lock"
	defaultRunLockTTL = 10 * time.Minute
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock keeps two processes from evaluating deadlines at the same time. The TTL
// bounds how long a crashed holder can block others.
type RunLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = defaultRunLockTTL
	}
	return &RunLock{
		client: client,
		key:    runLockKey,
		ttl:    ttl,
	}
}

// TryLock returns ok=false without error when another holder owns the lock.
func (l *RunLock) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	}
	return unlock, true, nil
}
