// Package redisstore is a session.Backend on Redis.
//
//	client, err := redis.Connect(ctx, cfg.Redis) // integration/database/redis
//	...
//	backend := redisstore.New[UserSession](client, redisstore.WithTTL(30*time.Minute))
//	store := session.NewIDStore[UserSession](backend)
//
// Values are stored as JSON under "session:<id>" and expire through the Redis
// key TTL, which defaults to the session duration.
package redisstore
