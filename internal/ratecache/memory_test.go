package ratecache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tillpoint/pos-backend/internal/models"
	"github.com/tillpoint/pos-backend/internal/ratecache"
)

func TestMemoryCache_GetMissing(t *testing.T) {
	cache := ratecache.NewMemoryCache()
	_, ok := cache.Get("USD")
	assert.False(t, ok)
}

func TestMemoryCache_SetAndGetIsCaseInsensitive(t *testing.T) {
	cache := ratecache.NewMemoryCache()
	snap := models.RateSnapshot{
		Base:      "usd",
		Rates:     map[string]float64{"EUR": 0.92},
		FetchedAt: time.Now(),
	}
	cache.Set(snap)

	got, ok := cache.Get("USD")
	assert.True(t, ok)
	assert.Equal(t, snap.Rates, got.Rates)
}

func TestMemoryCache_SetOverwrites(t *testing.T) {
	cache := ratecache.NewMemoryCache()
	cache.Set(models.RateSnapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.90}})
	cache.Set(models.RateSnapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.92}})

	got, ok := cache.Get("USD")
	assert.True(t, ok)
	assert.Equal(t, 0.92, got.Rates["EUR"])
}

func TestMemoryCache_ExpiredEntriesStayReadable(t *testing.T) {
	// Expiry is the resolver's decision; the cache must keep old snapshots
	// for the serve-stale-on-error path.
	cache := ratecache.NewMemoryCache()
	cache.Set(models.RateSnapshot{
		Base:      "USD",
		Rates:     map[string]float64{"EUR": 0.92},
		FetchedAt: time.Now().Add(-24 * time.Hour),
	})

	_, ok := cache.Get("USD")
	assert.True(t, ok)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	cache := ratecache.NewMemoryCache()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			cache.Set(models.RateSnapshot{Base: "USD", Rates: map[string]float64{"EUR": 0.92}})
		}()
		go func() {
			defer wg.Done()
			cache.Get("USD")
		}()
	}
	wg.Wait()
}
