package logutil

import (
	"context"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// Fingerprint returns a short stable tag for a session token.
// Only the fingerprint may appear in logs, never the token itself.
func Fingerprint(token string) string {
	if token == "" {
		return "anon"
	}
	return strconv.FormatUint(xxhash.Sum64String(token), 16)
}
