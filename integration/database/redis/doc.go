// Package redis connects to Redis with retries and exposes a health check.
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL:  "redis://localhost:6379/0",
//		RetryAttempts:  3,
//		RetryInterval:  time.Second,
//		ConnectTimeout: 30 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Config fields map to REDIS_URL, REDIS_RETRY_ATTEMPTS, REDIS_RETRY_INTERVAL
// and REDIS_CONNECT_TIMEOUT. Both redis:// and rediss:// URLs are accepted.
//
// Errors wrap ErrEmptyConnectionURL, ErrFailedToParseRedisConnString,
// ErrRedisNotReady or ErrHealthcheckFailed together with the go-redis cause.
package redis
