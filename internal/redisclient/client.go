package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const lowStockSetKey = "lowstock:products"

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetReport looks up a cached report. Returns false on a miss.
func (c *Client) GetReport(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, fmt.Sprintf("report:%s", key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("report cache get failed: %w", err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("report cache decode failed: %w", err)
	}
	return true, nil
}

// SetReport caches a report with a TTL.
func (c *Client) SetReport(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("report cache encode failed: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("report:%s", key), payload, ttl).Err()
}

// SetLowStockFlag marks a product as low on stock.
func (c *Client) SetLowStockFlag(ctx context.Context, productID int64) error {
	return c.rdb.SAdd(ctx, lowStockSetKey, productID).Err()
}

// ClearLowStockFlag removes a product's low stock mark.
func (c *Client) ClearLowStockFlag(ctx context.Context, productID int64) error {
	return c.rdb.SRem(ctx, lowStockSetKey, productID).Err()
}

// LowStockFlags returns the ids of all products currently flagged.
func (c *Client) LowStockFlags(ctx context.Context) ([]int64, error) {
	members, err := c.rdb.SMembers(ctx, lowStockSetKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
