package checkout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiebiao/mall/pkg/tracing"
)

// State 结账状态
type State int

const (
	StateDraft State = iota
	StateValidating
	StateReserving
	StatePricing
	StateCommitting
	StateCompleted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateDraft:
		return "draft"
	case StateValidating:
		return "validating"
	case StateReserving:
		return "reserving"
	case StatePricing:
		return "pricing"
	case StateCommitting:
		return "committing"
	case StateCompleted:
		return "completed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal 终态
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRolledBack
}

// 正常路径只能前进一步；Draft可以直接到Completed(幂等回放)
var forward = map[State]State{
	StateDraft:      StateValidating,
	StateValidating: StateReserving,
	StateReserving:  StatePricing,
	StatePricing:    StateCommitting,
	StateCommitting: StateCompleted,
}

// canTransition 任何非终态都可以进入RolledBack
func canTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateRolledBack {
		return true
	}
	if from == StateDraft && to == StateCompleted {
		return true
	}
	return forward[from] == to
}

// machine 记录一次结账的状态流转
// 每个阶段一个checkout.<state> span，挂在调用方的span下
type machine struct {
	state  State
	logger zerolog.Logger
	span   trace.Span
	hook   func(State)
}

func newMachine(logger zerolog.Logger, hook func(State)) *machine {
	m := &machine{state: StateDraft, logger: logger, hook: hook}
	if hook != nil {
		hook(StateDraft)
	}
	return m
}

// enter 进入下一阶段，返回带新阶段span的ctx
// ctx中的事务等值原样保留
func (m *machine) enter(ctx context.Context, next State) context.Context {
	if !canTransition(m.state, next) {
		panic(fmt.Sprintf("checkout: illegal transition %s -> %s", m.state, next))
	}
	m.endSpan(nil)

	m.logger.Debug().Stringer("from", m.state).Stringer("to", next).Msg("结账状态流转")
	m.state = next
	if m.hook != nil {
		m.hook(next)
	}

	if next.Terminal() {
		return ctx
	}
	ctx, m.span = tracing.StartSpan(ctx, "checkout."+next.String())
	return ctx
}

// fail 进入RolledBack；已经是终态时忽略
func (m *machine) fail(err error) {
	if m.state.Terminal() {
		return
	}
	m.endSpan(err)

	m.logger.Debug().Stringer("from", m.state).Stringer("to", StateRolledBack).Msg("结账状态流转")
	m.state = StateRolledBack
	if m.hook != nil {
		m.hook(StateRolledBack)
	}
}

// complete 从Committing或Draft(回放)进入Completed
func (m *machine) complete() {
	m.endSpan(nil)
	m.enter(context.Background(), StateCompleted)
}

func (m *machine) endSpan(err error) {
	if m.span != nil {
		tracing.EndSpan(m.span, err)
		m.span = nil
	}
}
