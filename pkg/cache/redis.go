package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/campus-virtual-api/pkg/config"
)

// KeyPrefix namespaces every key the API writes.
const KeyPrefix = "campus"

const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// Options turns cfg into client options. REDIS_URL, when set, wins over the
// discrete host, port, password and db settings.
func Options(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		opts = parsed
	}
	opts.DialTimeout = dialTimeout
	opts.ReadTimeout = ioTimeout
	opts.WriteTimeout = ioTimeout
	return opts, nil
}

// NewRedis connects and checks the server with a PING.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Key joins non-blank parts under KeyPrefix: Key("grades", id) is
// "campus:grades:<id>".
func Key(parts ...string) string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteByte(':')
			b.WriteString(p)
		}
	}
	return b.String()
}
