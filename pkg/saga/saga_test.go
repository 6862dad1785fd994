package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaga_AllStepsSucceed(t *testing.T) {
	var executed []string

	err := New("shipment", 5*time.Second).
		AddStep("快递建单",
			func(ctx context.Context) error { executed = append(executed, "快递建单"); return nil },
			func(ctx context.Context) error { executed = append(executed, "取消运单"); return nil },
		).
		AddStep("回写订单",
			func(ctx context.Context) error { executed = append(executed, "回写订单"); return nil },
			nil,
		).
		Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"快递建单", "回写订单"}, executed)
}

func TestSaga_FailureCompensatesInReverse(t *testing.T) {
	var executed []string
	errWrite := errors.New("数据库不可用")

	err := New("shipment", 5*time.Second).
		AddStep("步骤1",
			func(ctx context.Context) error { executed = append(executed, "执行1"); return nil },
			func(ctx context.Context) error { executed = append(executed, "补偿1"); return nil },
		).
		AddStep("步骤2",
			func(ctx context.Context) error { executed = append(executed, "执行2"); return nil },
			func(ctx context.Context) error { executed = append(executed, "补偿2"); return nil },
		).
		AddStep("步骤3",
			func(ctx context.Context) error { return errWrite },
			func(ctx context.Context) error { executed = append(executed, "补偿3"); return nil },
		).
		Execute(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errWrite)

	se, ok := IsStepError(err)
	require.True(t, ok)
	assert.Equal(t, "步骤3", se.Step)
	assert.Empty(t, se.CompensationErrs)

	// 失败的步骤本身不补偿
	assert.Equal(t, []string{"执行1", "执行2", "补偿2", "补偿1"}, executed)
}

func TestSaga_CompensationErrorsAreReported(t *testing.T) {
	errCancel := errors.New("取消运单失败")

	err := New("shipment", 0).
		AddStep("快递建单",
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error { return errCancel },
		).
		AddStep("回写订单",
			func(ctx context.Context) error { return errors.New("写入失败") },
			nil,
		).
		Execute(context.Background())

	se, ok := IsStepError(err)
	require.True(t, ok)
	require.Len(t, se.CompensationErrs, 1)
	assert.ErrorIs(t, se.CompensationErrs[0], errCancel)
}

func TestSaga_TimeoutStopsAndCompensates(t *testing.T) {
	compensated := false

	err := New("shipment", 20*time.Millisecond).
		AddStep("慢步骤",
			func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
			nil,
		).
		Execute(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = New("shipment", 20*time.Millisecond).
		AddStep("快步骤",
			func(ctx context.Context) error { return nil },
			func(ctx context.Context) error {
				compensated = true
				// 补偿context不受原超时影响
				return ctx.Err()
			},
		).
		AddStep("超时步骤",
			func(ctx context.Context) error {
				time.Sleep(40 * time.Millisecond)
				return ctx.Err()
			},
			nil,
		).
		Execute(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, compensated)
	se, _ := IsStepError(err)
	assert.Empty(t, se.CompensationErrs)
}
