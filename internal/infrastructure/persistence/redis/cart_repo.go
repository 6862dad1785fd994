package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookworld/internal/domain/cart"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

// maxWatchRetries WATCH的键被并发修改时的重试次数
const maxWatchRetries = 5

// cartRepository 购物车仓储
// cart:{user_id} 为Hash，field是图书ID，value是条目JSON
type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewCartRepository 创建购物车仓储，ttl为购物车闲置过期时间
func NewCartRepository(client *redis.Client, ttl time.Duration) cart.Repository {
	return &cartRepository{client: client, ttl: ttl, now: time.Now}
}

func encodeItem(it cart.Item) (string, error) {
	b, err := json.Marshal(it)
	return string(b), err
}

// decodeItems 解析Hash内容并按加入顺序排序，损坏的条目直接跳过
func decodeItems(fields map[string]string) []cart.Item {
	items := make([]cart.Item, 0, len(fields))
	for _, raw := range fields {
		var it cart.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil || it.Quantity <= 0 {
			continue
		}
		items = append(items, it)
	}
	cart.SortItems(items)
	return items
}

func redisErr(err error, msg string) error {
	return apperrors.WithCode(err, apperrors.ErrCodeRedisError, msg)
}

func (r *cartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	fields, err := r.client.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, redisErr(err, "读取购物车失败")
	}
	return &cart.Cart{UserID: userID, Items: decodeItems(fields)}, nil
}

// mutate 在WATCH事务里读取-修改-写回整个购物车
func (r *cartRepository) mutate(ctx context.Context, userID string, fn func(items []cart.Item) ([]cart.Item, error)) (*cart.Cart, error) {
	key := cartKey(userID)
	var result []cart.Item

	txf := func(tx *redis.Tx) error {
		fields, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		items, err := fn(decodeItems(fields))
		if err != nil {
			return err
		}

		values := make(map[string]interface{}, len(items))
		for _, it := range items {
			raw, err := encodeItem(it)
			if err != nil {
				return err
			}
			values[it.BookID] = raw
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(values) > 0 {
				pipe.HSet(ctx, key, values)
				if r.ttl > 0 {
					pipe.Expire(ctx, key, r.ttl)
				}
			}
			return nil
		})
		if err == nil {
			cart.SortItems(items)
			result = items
		}
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return &cart.Cart{UserID: userID, Items: result}, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, redisErr(err, "更新购物车失败")
	}
	return nil, redisErr(redis.TxFailedErr, "购物车更新冲突，请重试")
}

func (r *cartRepository) Add(ctx context.Context, userID string, item cart.Item) (*cart.Cart, error) {
	if item.Quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}
	return r.mutate(ctx, userID, func(items []cart.Item) ([]cart.Item, error) {
		for i := range items {
			if items[i].BookID == item.BookID {
				items[i] = cart.Add(&items[i], item)
				return items, nil
			}
		}
		if item.AddedAt == 0 {
			item.AddedAt = r.now().UnixNano()
		}
		return append(items, item), nil
	})
}

func (r *cartRepository) SetQuantity(ctx context.Context, userID, bookID string, quantity int) (*cart.Cart, error) {
	if quantity < 0 {
		return nil, cart.ErrInvalidQuantity
	}
	return r.mutate(ctx, userID, func(items []cart.Item) ([]cart.Item, error) {
		for i := range items {
			if items[i].BookID != bookID {
				continue
			}
			if quantity == 0 {
				return append(items[:i], items[i+1:]...), nil
			}
			items[i].Quantity = quantity
			return items, nil
		}
		return nil, cart.ErrItemNotInCart
	})
}

func (r *cartRepository) Remove(ctx context.Context, userID, bookID string) (*cart.Cart, error) {
	return r.SetQuantity(ctx, userID, bookID, 0)
}

func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return redisErr(err, "清空购物车失败")
	}
	return nil
}

// Merge 登录后合并访客购物车
func (r *cartRepository) Merge(ctx context.Context, userID string, guest []cart.Item) (*cart.Cart, error) {
	now := r.now().UnixNano()
	incoming := make([]cart.Item, len(guest))
	for i, it := range guest {
		if it.AddedAt == 0 {
			it.AddedAt = now + int64(i)
		}
		incoming[i] = it
	}
	return r.mutate(ctx, userID, func(items []cart.Item) ([]cart.Item, error) {
		return cart.Merge(items, incoming), nil
	})
}
