package mysql

import (
	"context"
	"errors"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// MySQL错误码
const (
	errDuplicateEntry  = 1062
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

type txKey struct{}

// TxManager 事务管理器
// fn内的Repository操作通过ctx拿到同一个事务DB；
// 死锁或锁等待超时时整个fn重跑，超过maxAttempts返回ErrTransactionConflict
type TxManager struct {
	db          *gorm.DB
	maxAttempts int
	backoff     time.Duration
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB, maxAttempts int) *TxManager {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &TxManager{db: db, maxAttempts: maxAttempts, backoff: 20 * time.Millisecond}
}

// Transaction 执行事务，已在事务中时直接复用外层事务
//
//	err := txManager.Transaction(ctx, func(txCtx context.Context) error {
//	    b, err := bookRepo.LockByID(txCtx, bookID)
//	    ...
//	    return bookRepo.UpdateStock(txCtx, bookID, -quantity)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		})
		if !isRetryable(err) {
			return err
		}

		logger.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Msg("事务冲突，重试")
		if attempt < m.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * m.backoff):
			}
		}
	}
	return apperrors.WithCode(err, apperrors.ErrCodeTransactionConflict, apperrors.ErrTransactionConflict.Message)
}

// getDB 从context获取事务DB，没有则使用默认DB
func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func mysqlErrorNumber(err error) uint16 {
	var me *mysqldriver.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isRetryable 死锁和锁等待超时可以整体重跑
func isRetryable(err error) bool {
	switch mysqlErrorNumber(err) {
	case errDeadlock, errLockWaitTimeout:
		return true
	}
	return false
}

// isDuplicateError 唯一索引冲突
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || mysqlErrorNumber(err) == errDuplicateEntry
}
