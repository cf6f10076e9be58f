package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"restroom_radar/internal/geo"
	"restroom_radar/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISTANCE_UNIT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("WALKING_SPEED", "")
	t.Setenv("SEARCH_DEFAULT_RADIUS", "")
	t.Setenv("TRUSTED_PROXY", "")

	c := shared.Load()
	assert.Equal(t, geo.Kilometers, c.Unit)
	assert.Equal(t, 5.0, c.WalkingSpeed)
	assert.Equal(t, 2.0, c.DefaultRadius)
	assert.Equal(t, "mysql", c.StoreDriver)
	assert.False(t, c.TrustProxy)
}

func TestLoad_MilesDeployment(t *testing.T) {
	t.Setenv("DISTANCE_UNIT", "mi")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("WALKING_SPEED", "")
	t.Setenv("SEARCH_DEFAULT_RADIUS", "")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("TRUSTED_PROXY", "true")

	c := shared.Load()
	assert.Equal(t, geo.Miles, c.Unit)
	assert.Equal(t, 3.1, c.WalkingSpeed)
	assert.Equal(t, 1.2, c.DefaultRadius)
	assert.Equal(t, "postgres", c.StoreDriver)
	assert.Equal(t, time.Minute, c.CacheTTL)
	assert.True(t, c.TrustProxy)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DISTANCE_UNIT", "leagues")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("WALKING_SPEED", "-1")
	t.Setenv("SEARCH_DEFAULT_RADIUS", "abc")
	t.Setenv("RATE_LIMIT_RPS", "many")
	t.Setenv("TRUSTED_PROXY", "maybe")

	c := shared.Load()
	assert.Equal(t, geo.Kilometers, c.Unit)
	assert.Equal(t, "mysql", c.StoreDriver)
	assert.Equal(t, 5.0, c.WalkingSpeed)
	assert.Equal(t, 2.0, c.DefaultRadius)
	assert.Equal(t, 20, c.RateLimitRPS)
	assert.False(t, c.TrustProxy)
}
