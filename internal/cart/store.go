package cart

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Item is a product reference plus quantity. Prices are not stored in the
// cart; they are captured from the catalog at checkout time.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Store interface {
	Get(ctx context.Context, userID string) ([]Item, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	Clear(ctx context.Context, userID string) error
}

const cartTTL = 7 * 24 * time.Hour

// RedisStore keeps one hash per user, product id to quantity.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) ([]Item, error) {
	entries, err := s.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get cart for user %s: %w", userID, err)
	}

	items := make([]Item, 0, len(entries))
	for productID, raw := range entries {
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart entry %s for user %s: %w", productID, userID, err)
		}
		items = append(items, Item{ProductID: productID, Quantity: quantity})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	return items, nil
}

func (s *RedisStore) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	key := cartKey(userID)

	if quantity <= 0 {
		if err := s.client.HDel(ctx, key, productID).Err(); err != nil {
			return fmt.Errorf("remove cart entry for user %s: %w", userID, err)
		}
		return nil
	}

	if err := s.client.HSet(ctx, key, productID, quantity).Err(); err != nil {
		return fmt.Errorf("set cart entry for user %s: %w", userID, err)
	}
	if err := s.client.Expire(ctx, key, cartTTL).Err(); err != nil {
		return fmt.Errorf("refresh cart ttl for user %s: %w", userID, err)
	}

	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart for user %s: %w", userID, err)
	}
	return nil
}
