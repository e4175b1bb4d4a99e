// Package saga 按顺序执行一组步骤，失败时逆序补偿已完成的步骤
//
// 下单流程用它串起多个商品的库存预留：任何一个商品预留失败，
// 之前已经预留的商品都会被释放。
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/pkg/metrics"
)

// Step Saga中的一个步骤
// Action和Compensate都可以为nil
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次Saga执行，不可复用，也不是并发安全的
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
	logger   zerolog.Logger
}

// Option Saga配置项
type Option func(*Saga)

// WithLogger 补偿失败等信息写入该logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Saga) {
		s.logger = logger
	}
}

// NewSaga 创建Saga，timeout<=0表示不额外限制耗时
//
//	s := saga.NewSaga(5 * time.Second)
//	s.AddStep("reserve:1", reserve, release)
//	err := s.Execute(ctx)
func NewSaga(timeout time.Duration, opts ...Option) *Saga {
	s := &Saga{
		timeout: timeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddStep 追加步骤，按添加顺序执行、逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute 执行所有步骤
//
// 某一步失败（或ctx结束）时，逆序补偿已经成功的步骤，返回原始错误的包装。
// 补偿使用context.WithoutCancel(ctx)：ctx里的事务等值仍然可见，
// 但调用方超时不会打断补偿。
func (s *Saga) Execute(ctx context.Context) error {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(ctx)
			metrics.ObserveSaga("timeout", time.Since(start))
			return fmt.Errorf("步骤[%d:%s]执行前中止: %w", i, step.Name, err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.logger.Debug().Err(err).Int("step", i).Str("name", step.Name).Msg("saga步骤失败，开始补偿")
				s.compensate(ctx)
				metrics.ObserveSaga("compensated", time.Since(start))
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}

	metrics.ObserveSaga("success", time.Since(start))
	return nil
}

// Executed 已成功执行且尚未补偿的步骤数
func (s *Saga) Executed() int {
	return len(s.executed)
}

// compensate 逆序执行补偿，单个补偿失败不影响其余补偿
func (s *Saga) compensate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.IncSagaCompensation()
		if err := step.Compensate(ctx); err != nil {
			s.logger.Error().Err(err).Str("name", step.Name).Msg("saga补偿失败")
		}
	}
	s.executed = nil
}
