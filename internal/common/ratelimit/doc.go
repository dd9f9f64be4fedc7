// Package ratelimit limits requests per key with either an in-memory token
// bucket (golang.org/x/time/rate) or a Redis sliding window shared by every
// instance.
//
// # Basic Usage
//
//	limiter, err := ratelimit.New(ratelimit.Config{
//		Enabled: true,
//		Limit:   60,
//		Window:  time.Minute,
//		Type:    ratelimit.BackendDistributed,
//	}, redisClient)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	router.Use(ratelimit.HTTPMiddleware(limiter, ratelimit.IPKey))
//
// The distributed backend allows requests when Redis cannot be reached.
package ratelimit
