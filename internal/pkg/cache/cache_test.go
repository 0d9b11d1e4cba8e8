package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	var out []string

	hit, err := c.GetJSON(context.Background(), "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.SetJSON(context.Background(), "k", []string{"a"}))
	assert.NoError(t, c.Delete(context.Background(), "k"))
}

func TestRedisCache_KeyPrefixAndDefaults(t *testing.T) {
	c := NewRedisCache(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "parivartan", 0)

	assert.Equal(t, "parivartan:slideshows", c.key("slideshows"))
	assert.Equal(t, time.Minute, c.ttl)

	bare := NewRedisCache(nil, "", time.Second)
	assert.Equal(t, "faq", bare.key("faq"))
	assert.NoError(t, bare.Delete(context.Background()))
}
