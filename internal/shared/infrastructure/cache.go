package infrastructure

import (
	"context"
	"sync"
	"time"
)

// cacheEntry représente une entrée de cache avec expiration
type cacheEntry[V any] struct {
	value      V
	expiration time.Time
}

func (e cacheEntry[V]) expired(now time.Time) bool {
	return now.After(e.expiration)
}

// TTLCache cache en mémoire avec expiration, sûr pour un usage concurrent
// Il n'est jamais global: chaque consommateur reçoit son instance par injection
type TTLCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]cacheEntry[V]
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewTTLCache crée un cache avec la durée de vie donnée et lance le nettoyage périodique
func NewTTLCache[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{
		entries: make(map[K]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go c.cleanupExpired(time.Minute)
	return c
}

// Get récupère une valeur non expirée
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired(c.now()) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set ajoute ou met à jour une valeur
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[V]{value: value, expiration: c.now().Add(c.ttl)}
}

// GetOrLoad lecture traversante: retourne la valeur en cache ou appelle load et mémorise le résultat
// Les erreurs de load ne sont pas mises en cache
func (c *TTLCache[K, V]) GetOrLoad(ctx context.Context, key K, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

// Close arrête le nettoyage périodique
func (c *TTLCache[K, V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanupExpired supprime périodiquement les entrées expirées
func (c *TTLCache[K, V]) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if entry.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
