package redisstore

import "errors"

var (
	// ErrFailedToParseConnString is returned when the Redis connection URL
	// cannot be parsed.
	ErrFailedToParseConnString = errors.New("redisstore: failed to parse connection string")

	// ErrRedisNotReady is returned when every connection attempt fails.
	ErrRedisNotReady = errors.New("redisstore: redis is not ready")

	// ErrDecodeFailed wraps an undecodable stored notification document.
	ErrDecodeFailed = errors.New("redisstore: failed to decode notification")
)
