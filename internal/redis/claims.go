package redisclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrClaimHeld = errors.New("slot claimed by another appointment")

// Claims records which appointment holds a (date, time, specialist) key so
// that replicas sharing a Redis refuse each other's bookings. A claim has no
// TTL; it is released when its appointment stops being live.
type Claims interface {
	Claim(ctx context.Context, key, owner string) error
	Release(ctx context.Context, key, owner string) error
	Owner(ctx context.Context, key string) (string, bool, error)
}

type redisClaims struct {
	client redis.UniversalClient
}

func NewRedisClaims(client redis.UniversalClient) Claims {
	return &redisClaims{client: client}
}

func claimKey(key string) string {
	return "claim:slot:" + key
}

// claiming again with the same owner succeeds, so restoring the same
// appointments on every replica is harmless
var claimScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  redis.call("SET", KEYS[1], ARGV[1])
  return 1
end
if val == ARGV[1] then
  return 1
end
return 0
`)

func (c *redisClaims) Claim(ctx context.Context, key, owner string) error {
	ok, err := claimScript.Run(ctx, c.client, []string{claimKey(key)}, owner).Int()
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}
	if ok == 0 {
		return ErrClaimHeld
	}
	return nil
}

// Release drops the claim only while owner still holds it.
func (c *redisClaims) Release(ctx context.Context, key, owner string) error {
	_, err := unlockScript.Run(ctx, c.client, []string{claimKey(key)}, owner).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release slot claim: %w", err)
	}
	return nil
}

func (c *redisClaims) Owner(ctx context.Context, key string) (string, bool, error) {
	owner, err := c.client.Get(ctx, claimKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot claim: %w", err)
	}
	return owner, true, nil
}
