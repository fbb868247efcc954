package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-orders/internal/models"
)

// DefaultKey is the single entry holding the JSON-encoded order array,
// mirroring the storefront client's one localStorage slot.
const DefaultKey = "orders"

// ErrCacheUnavailable is returned by writes when no cache backend is
// configured. The replica cache is best-effort, so callers treat this as a
// harmless degraded outcome, never a fault.
var ErrCacheUnavailable = errors.New("replica cache unavailable")

// RedisClient is the slice of go-redis used by the cache. Narrowed to an
// interface so tests can drop in an in-memory client.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cache mirrors orders into a size-bounded key-value area. It is a fallback
// and read accelerator, not a source of truth: a corrupt stored collection
// reads as empty, and every write is an upsert of the whole collection
// (read-modify-write, no compare-and-swap).
type Cache struct {
	Client RedisClient
	Key    string
	Logger *log.Logger
}

func New(client RedisClient) *Cache {
	return &Cache{
		Client: client,
		Key:    DefaultKey,
		Logger: log.Default(),
	}
}

// load reads the stored collection. A missing key is an empty cache; a value
// that fails to parse as an order array is treated the same way, because
// corruption must never block the user.
func (c *Cache) load() []models.Order {
	if c.Client == nil {
		return nil
	}

	raw, err := c.Client.Get(context.Background(), c.Key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		c.Logger.Printf("CACHE: read failed: %v", err)
		return nil
	}

	var orders []models.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		c.Logger.Printf("CACHE: discarding corrupt collection: %v", err)
		return nil
	}
	return orders
}

func (c *Cache) store(orders []models.Order) error {
	if c.Client == nil {
		return ErrCacheUnavailable
	}

	blob, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return c.Client.Set(context.Background(), c.Key, string(blob), 0).Err()
}

// Put upserts one order into the cached collection. A record that already
// exists is replaced, never rejected.
func (c *Cache) Put(order models.Order) error {
	if c.Client == nil {
		return ErrCacheUnavailable
	}

	orders := c.load()
	replaced := false
	for i := range orders {
		if orders[i].ID == order.ID {
			orders[i] = order
			replaced = true
			break
		}
	}
	if !replaced {
		orders = append(orders, order)
	}
	return c.store(orders)
}

// GetAll returns the cached orders, newest first. An unavailable or corrupt
// cache reads as empty.
func (c *Cache) GetAll() ([]models.Order, error) {
	orders := c.load()
	for i := 0; i < len(orders)/2; i++ {
		j := len(orders) - 1 - i
		orders[i], orders[j] = orders[j], orders[i]
	}
	return orders, nil
}

func (c *Cache) GetByID(id string) (*models.Order, error) {
	for _, order := range c.load() {
		if order.ID == id {
			return &order, nil
		}
	}
	return nil, models.ErrOrderNotFound
}

// SetStatus rewrites the matching order with the new status.
func (c *Cache) SetStatus(id string, status models.Status) error {
	if c.Client == nil {
		return ErrCacheUnavailable
	}

	orders := c.load()
	for i := range orders {
		if orders[i].ID == id {
			orders[i].Status = status
			return c.store(orders)
		}
	}
	return models.ErrOrderNotFound
}

func (c *Cache) Count() (int, error) {
	return len(c.load()), nil
}
