// Package saga 本地Saga编排：按顺序执行步骤，失败时逆序补偿已完成的步骤
//
// 用于跨越外部系统的流程（如先在快递平台建单，再回写订单），
// 这类流程无法放进一个数据库事务。
package saga

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xiebiao/bookworld/pkg/logger"
	"github.com/xiebiao/bookworld/pkg/metrics"
)

// Step Saga中的一个步骤
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error // 可以为nil（无需补偿）
}

// Saga 一次编排
type Saga struct {
	name     string
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// StepError 步骤失败，附带补偿过程中的错误
type StepError struct {
	Step             string
	Err              error
	CompensationErrs []error
}

func (e *StepError) Error() string {
	if len(e.CompensationErrs) > 0 {
		return fmt.Sprintf("saga步骤[%s]失败: %v (补偿失败%d个)", e.Step, e.Err, len(e.CompensationErrs))
	}
	return fmt.Sprintf("saga步骤[%s]失败: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// New 创建Saga，timeout<=0表示不限时
func New(name string, timeout time.Duration) *Saga {
	return &Saga{name: name, timeout: timeout}
}

// AddStep 追加步骤
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Execute 执行所有步骤
// 任一步骤失败或超时，逆序执行已完成步骤的补偿，返回*StepError
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for _, step := range s.steps {
		err := ctx.Err()
		if err == nil && step.Action != nil {
			err = step.Action(ctx)
		}
		if err != nil {
			// 补偿使用独立的context，原context可能已超时
			compErrs := s.compensate(context.WithoutCancel(ctx))
			metrics.ObserveSaga(s.name, false, time.Since(start))
			return &StepError{Step: step.Name, Err: err, CompensationErrs: compErrs}
		}
		s.executed = append(s.executed, step)
	}

	metrics.ObserveSaga(s.name, true, time.Since(start))
	return nil
}

func (s *Saga) compensate(ctx context.Context) []error {
	var errs []error
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.SagaCompensationsTotal.WithLabelValues(s.name).Inc()
		if err := step.Compensate(ctx); err != nil {
			logger.Ctx(ctx).Error().Err(err).
				Str("saga", s.name).
				Str("step", step.Name).
				Msg("补偿失败，需要人工处理")
			errs = append(errs, err)
		}
	}
	s.executed = nil
	return errs
}

// IsStepError 判断是否为Saga步骤错误
func IsStepError(err error) (*StepError, bool) {
	var se *StepError
	ok := errors.As(err, &se)
	return se, ok
}
