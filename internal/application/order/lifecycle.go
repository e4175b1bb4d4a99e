// Package order 下单之后的订单用例：查询、支付、发货、完成、取消、备注
package order

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xiebiao/mall/internal/domain"
	"github.com/xiebiao/mall/internal/domain/inventory"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/pkg/mq"
)

// LifecycleUseCase 订单状态流转用例
type LifecycleUseCase struct {
	tx        domain.Transactor
	orders    order.Repository
	ledger    *inventory.Ledger
	publisher mq.Publisher
	logger    zerolog.Logger
}

// NewLifecycleUseCase 创建订单状态流转用例
func NewLifecycleUseCase(
	tx domain.Transactor,
	orders order.Repository,
	ledger *inventory.Ledger,
	publisher mq.Publisher,
	logger zerolog.Logger,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		tx:        tx,
		orders:    orders,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger.With().Str("component", "order_lifecycle").Logger(),
	}
}

// Pay 支付
func (uc *LifecycleUseCase) Pay(ctx context.Context, userID uint, orderNo string) (*order.Order, error) {
	return uc.transition(ctx, userID, orderNo, (*order.Order).Pay)
}

// Ship 发货
func (uc *LifecycleUseCase) Ship(ctx context.Context, userID uint, orderNo string) (*order.Order, error) {
	return uc.transition(ctx, userID, orderNo, (*order.Order).Ship)
}

// Complete 确认收货
func (uc *LifecycleUseCase) Complete(ctx context.Context, userID uint, orderNo string) (*order.Order, error) {
	return uc.transition(ctx, userID, orderNo, (*order.Order).Complete)
}

// UpdateRemark 修改备注
func (uc *LifecycleUseCase) UpdateRemark(ctx context.Context, userID uint, orderNo, remark string) (*order.Order, error) {
	return uc.transition(ctx, userID, orderNo, func(o *order.Order) error {
		return o.UpdateRemark(remark)
	})
}

// Cancel 取消订单并归还库存
// 状态变更和每一行的库存归还在同一事务中，任一失败全部回滚
// 提交后发布order.cancelled，发布失败只记日志
func (uc *LifecycleUseCase) Cancel(ctx context.Context, userID uint, orderNo string) (*order.Order, error) {
	var cancelled *order.Order
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		o, err := findOwned(ctx, uc.orders, userID, orderNo)
		if err != nil {
			return err
		}
		if err := o.Cancel(); err != nil {
			return err
		}
		if err := uc.orders.Update(ctx, o); err != nil {
			return err
		}
		for _, item := range o.Items {
			if err := uc.ledger.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := uc.publisher.Publish(pubCtx, order.EventOrderCancelled, order.NewCancelledEvent(cancelled)); err != nil {
		uc.logger.Warn().Err(err).Str("order_no", cancelled.OrderNo).Msg("发布取消事件失败")
	}

	uc.logger.Info().
		Str("order_no", cancelled.OrderNo).
		Uint("user_id", userID).
		Msg("订单已取消")
	return cancelled, nil
}

func (uc *LifecycleUseCase) transition(ctx context.Context, userID uint, orderNo string, fn func(*order.Order) error) (*order.Order, error) {
	var updated *order.Order
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		o, err := findOwned(ctx, uc.orders, userID, orderNo)
		if err != nil {
			return err
		}
		if err := fn(o); err != nil {
			return err
		}
		if err := uc.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
