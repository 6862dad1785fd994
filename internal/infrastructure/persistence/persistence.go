// Package persistence 按配置选择存储后端
//
//	mysql:  图书、订单、用户存MySQL，会话、购物车、站点数据存Redis
//	memory: 全部存进程内文档存储，用于本地运行和测试
package persistence

import (
	"fmt"

	"github.com/xiebiao/bookworld/internal/domain/book"
	"github.com/xiebiao/bookworld/internal/domain/cart"
	"github.com/xiebiao/bookworld/internal/domain/order"
	"github.com/xiebiao/bookworld/internal/domain/shared"
	"github.com/xiebiao/bookworld/internal/domain/site"
	"github.com/xiebiao/bookworld/internal/domain/user"
	"github.com/xiebiao/bookworld/internal/infrastructure/config"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookworld/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// Repositories 所有仓储
type Repositories struct {
	Tx       shared.TxManager
	Books    book.Repository
	Orders   order.Repository
	Users    user.Repository
	Carts    cart.Repository
	Site     site.Repository
	Sessions user.SessionStore

	closers []func() error
}

// Close 释放数据库和Redis连接
func (r *Repositories) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New 创建仓储
func New(cfg *config.Config) (*Repositories, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("使用内存存储，数据不会持久化", nil)
		return NewMemory(cfg.Storage.TxMaxAttempts), nil
	case config.DriverMySQL:
		return newMySQL(cfg)
	default:
		return nil, fmt.Errorf("不支持的存储后端: %q", cfg.Storage.Driver)
	}
}

// NewMemory 内存存储
func NewMemory(txMaxAttempts int) *Repositories {
	store := memory.NewStore(txMaxAttempts)
	return &Repositories{
		Tx:       store,
		Books:    memory.NewBookRepository(store),
		Orders:   memory.NewOrderRepository(store),
		Users:    memory.NewUserRepository(store),
		Carts:    memory.NewCartRepository(store),
		Site:     memory.NewSiteRepository(store),
		Sessions: memory.NewSessionStore(),
	}
}

func newMySQL(cfg *config.Config) (*Repositories, error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	client, err := redis.NewClient(cfg)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &Repositories{
		Tx:       mysql.NewTxManager(db, cfg.Storage.TxMaxAttempts),
		Books:    mysql.NewBookRepository(db),
		Orders:   mysql.NewOrderRepository(db),
		Users:    mysql.NewUserRepository(db),
		Carts:    redis.NewCartRepository(client, cfg.Redis.CartTTL),
		Site:     redis.NewSiteRepository(client),
		Sessions: redis.NewSessionStore(client),
		closers:  []func() error{client.Close, sqlDB.Close},
	}, nil
}
