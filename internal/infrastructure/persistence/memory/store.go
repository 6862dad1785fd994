// Package memory 内存文档存储
//
// 每个文档带版本号。事务内读取记录版本、写入先缓冲，提交时校验所有读过的版本
// （以及扫描过的集合版本）是否仍然有效，任一失效即视为冲突，整个事务函数重跑。
// 用于本地运行和测试，语义上对应文档数据库的乐观事务。
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "github.com/xiebiao/bookworld/pkg/errors"
	"github.com/xiebiao/bookworld/pkg/logger"
)

// errConflict 提交时发现读过的数据已被其他事务修改
var errConflict = errors.New("memory: transaction conflict")

type docKey struct {
	coll string
	id   string
}

type doc struct {
	version uint64
	value   interface{}
}

// Store 内存文档存储
type Store struct {
	mu    sync.RWMutex
	colls map[string]map[string]*doc
	// collVersions 集合内任一文档变化都会更新
	collVersions map[string]uint64
	seq          uint64

	maxAttempts int
	backoff     time.Duration
}

// NewStore 创建存储，maxAttempts为冲突时的最大执行次数
func NewStore(maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Store{
		colls:        make(map[string]map[string]*doc),
		collVersions: make(map[string]uint64),
		maxAttempts:  maxAttempts,
		backoff:      time.Millisecond,
	}
}

type txKey struct{}

// tx 一次乐观事务
type tx struct {
	store  *Store
	reads  map[docKey]uint64
	scans  map[string]uint64
	writes map[docKey]*pendingWrite
}

type pendingWrite struct {
	value   interface{}
	deleted bool
}

func newTx(s *Store) *tx {
	return &tx{
		store:  s,
		reads:  make(map[docKey]uint64),
		scans:  make(map[string]uint64),
		writes: make(map[docKey]*pendingWrite),
	}
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// Transaction 在乐观事务中执行fn
// 已在事务中时直接加入外层事务；冲突时整体重跑，超过maxAttempts返回ErrTransactionConflict
func (s *Store) Transaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if t := txFrom(ctx); t != nil && t.store == s {
		return fn(ctx)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := newTx(s)
		err := fn(context.WithValue(ctx, txKey{}, t))
		if err == nil {
			err = s.commit(t)
		}
		if !errors.Is(err, errConflict) {
			return err
		}

		logger.Ctx(ctx).Debug().Int("attempt", attempt).Msg("文档存储事务冲突，重试")
		if attempt < s.maxAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * s.backoff):
			}
		}
	}
	return apperrors.WithCode(errConflict, apperrors.ErrCodeTransactionConflict, apperrors.ErrTransactionConflict.Message)
}

// do 在ctx中的事务内执行，没有事务时开启一个自动提交的事务
func (s *Store) do(ctx context.Context, fn func(t *tx) error) error {
	if t := txFrom(ctx); t != nil && t.store == s {
		return fn(t)
	}
	return s.Transaction(ctx, func(txCtx context.Context) error {
		return fn(txFrom(txCtx))
	})
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, seen := range t.reads {
		if s.versionLocked(k) != seen {
			return errConflict
		}
	}
	for coll, seen := range t.scans {
		if s.collVersions[coll] != seen {
			return errConflict
		}
	}

	for k, w := range t.writes {
		s.seq++
		docs := s.colls[k.coll]
		if docs == nil {
			docs = make(map[string]*doc)
			s.colls[k.coll] = docs
		}
		if w.deleted {
			delete(docs, k.id)
		} else {
			docs[k.id] = &doc{version: s.seq, value: w.value}
		}
		s.collVersions[k.coll] = s.seq
	}
	return nil
}

func (s *Store) versionLocked(k docKey) uint64 {
	if d := s.colls[k.coll][k.id]; d != nil {
		return d.version
	}
	return 0
}

// get 读取文档（优先读本事务的写入），并记录读版本
func (t *tx) get(coll, id string) (interface{}, bool) {
	k := docKey{coll, id}
	if w, ok := t.writes[k]; ok {
		if w.deleted {
			return nil, false
		}
		return w.value, true
	}

	t.store.mu.RLock()
	d := t.store.colls[coll][id]
	t.store.mu.RUnlock()

	if _, seen := t.reads[k]; !seen {
		if d == nil {
			t.reads[k] = 0
		} else {
			t.reads[k] = d.version
		}
	}
	if d == nil {
		return nil, false
	}
	return d.value, true
}

// scan 读取集合内所有文档（合并本事务的写入），并记录集合版本
func (t *tx) scan(coll string) []interface{} {
	t.store.mu.RLock()
	if _, seen := t.scans[coll]; !seen {
		t.scans[coll] = t.store.collVersions[coll]
	}
	values := make(map[string]interface{}, len(t.store.colls[coll]))
	for id, d := range t.store.colls[coll] {
		values[id] = d.value
	}
	t.store.mu.RUnlock()

	for k, w := range t.writes {
		if k.coll != coll {
			continue
		}
		if w.deleted {
			delete(values, k.id)
		} else {
			values[k.id] = w.value
		}
	}

	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func (t *tx) put(coll, id string, value interface{}) {
	t.writes[docKey{coll, id}] = &pendingWrite{value: value}
}

func (t *tx) delete(coll, id string) {
	t.writes[docKey{coll, id}] = &pendingWrite{deleted: true}
}
