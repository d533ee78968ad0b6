package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const cacheKeyAllRestaurants = "restaurants:all"

func restaurantCacheKey(id string) string {
	return "restaurant:" + id
}

// readThrough serves dest from the cache or fills it with load. Cache
// failures are logged and otherwise ignored.
func readThrough(ctx context.Context, c Cache, ttl time.Duration, key string, dest any, load func() (bool, error)) error {
	hit, err := c.Get(ctx, key, dest)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if hit {
		return nil
	}

	found, err := load()
	if err != nil || !found {
		return err
	}
	if err := c.Set(ctx, key, dest, ttl); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return nil
}

func invalidate(ctx context.Context, c Cache, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		logrus.WithError(err).WithField("keys", keys).Warn("cache invalidation failed")
	}
}
