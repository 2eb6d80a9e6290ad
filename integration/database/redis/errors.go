package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL, use REDIS_URL env var")
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	ErrRedisNotReady                = errors.New("redis did not answer ping within the retry budget")
	ErrHealthcheckFailed            = errors.New("redis healthcheck failed")
)
