package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/pairchat/pkg/config"
)

// fixedWindowScript increments the window counter, starting the window on
// the first hit, and returns {count, remaining ttl in ms}.
const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`

// Rule is a fixed-window limit.
type Rule struct {
	Limit  int
	Window time.Duration
}

// Result describes one Allow decision.
type Result struct {
	Allowed     bool
	Remaining   int
	Limit       int
	Window      time.Duration
	RetryAfter  time.Duration
	ResetAfter  time.Duration
	IdentityKey string
	EndpointKey string
}

// Limiter counts requests per endpoint and identity in Redis.
type Limiter struct {
	client redis.Scripter
	script *redis.Script
	cfg    config.RateLimitConfig
}

// NewLimiter creates a Redis-backed fixed-window limiter.
func NewLimiter(client redis.Scripter, cfg config.RateLimitConfig) *Limiter {
	return &Limiter{
		client: client,
		script: redis.NewScript(fixedWindowScript),
		cfg:    cfg,
	}
}

// DefaultRule returns the configured limit and window.
func (l *Limiter) DefaultRule() Rule {
	return Rule{Limit: l.cfg.Limit, Window: l.cfg.Window()}
}

// Allow records a hit for identity on endpoint and reports whether it fits
// within rule. A disabled limiter or a non-positive limit always allows.
func (l *Limiter) Allow(ctx context.Context, endpoint, identity string, rule Rule) (*Result, error) {
	result := &Result{
		Allowed:     true,
		Remaining:   rule.Limit,
		Limit:       rule.Limit,
		Window:      rule.Window,
		IdentityKey: identity,
		EndpointKey: endpoint,
	}

	if !l.cfg.Enabled || rule.Limit <= 0 {
		return result, nil
	}

	window := rule.Window
	if window <= 0 {
		window = l.cfg.Window()
		result.Window = window
	}

	raw, err := l.script.Run(ctx, l.client, []string{l.key(endpoint, identity)}, window.Milliseconds()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate rate limit: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected rate limit script result: %v", raw)
	}

	count := toInt(values[0])
	ttl := time.Duration(toInt(values[1])) * time.Millisecond

	result.ResetAfter = ttl
	result.Remaining = rule.Limit - count
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	if count > rule.Limit {
		result.Allowed = false
		result.RetryAfter = ttl
	}

	return result, nil
}

func (l *Limiter) key(endpoint, identity string) string {
	prefix := l.cfg.RedisPrefix
	if prefix == "" {
		prefix = "rl"
	}
	return prefix + ":" + endpoint + ":" + identity
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
