package gormdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/mall/internal/domain/cart"
	"github.com/xiebiao/mall/internal/domain/order"
	"github.com/xiebiao/mall/internal/domain/product"
)

// newMockDB MySQL方言 + sqlmock，断言仓储生成的SQL
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestProductRepository_CompareAndSwapStock(t *testing.T) {
	cas := "UPDATE `products` SET `stock`=\\?,`updated_at`=\\?,`version`=version \\+ 1 WHERE id = \\? AND version = \\?"

	t.Run("版本号匹配时写入", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(cas).WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := NewProductRepository(db).CompareAndSwapStock(context.Background(), 7, 3, 4)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("版本号已变化", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(cas).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := NewProductRepository(db).CompareAndSwapStock(context.Background(), 7, 3, 4)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("负库存不落库", func(t *testing.T) {
		db, mock := newMockDB(t)

		_, err := NewProductRepository(db).CompareAndSwapStock(context.Background(), 7, 3, -1)
		assert.ErrorIs(t, err, product.ErrInvalidStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func newTestOrder(no string) *order.Order {
	return order.NewOrder(no, 1, 2, []order.OrderItem{{
		ProductID:    3,
		ProductName:  "X",
		ProductPrice: decimal.RequireFromString("10.00"),
		Quantity:     2,
		Amount:       decimal.RequireFromString("20.00"),
	}}, decimal.RequireFromString("20.00"))
}

func TestOrderRepository_CreateDuplicateOrderNo(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `orders`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ORD1' for key 'orders.idx_orders_order_no'"))

	err := NewOrderRepository(db).Create(context.Background(), newTestOrder("ORD1"))

	assert.ErrorIs(t, err, order.ErrDuplicateOrderNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CreateOtherErrorIsPersistence(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `orders`").WillReturnError(errors.New("connection reset by peer"))

	err := NewOrderRepository(db).Create(context.Background(), newTestOrder("ORD1"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, order.ErrDuplicateOrderNo)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_FindByUserIDForUpdateLocksCartRow(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `carts` WHERE user_id = \\?.* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_items", "created_at", "updated_at"}).
			AddRow(5, 9, 3, now, now))
	mock.ExpectQuery("SELECT \\* FROM `cart_items` WHERE cart_id = \\? ORDER BY product_id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity", "created_at", "updated_at"}).
			AddRow(11, 5, 1, 2, now, now).
			AddRow(12, 5, 4, 1, now, now))

	c, err := NewCartRepository(db).FindByUserIDForUpdate(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, uint(5), c.ID)
	assert.Equal(t, []cart.Item{{ProductID: 1, Quantity: 2}, {ProductID: 4, Quantity: 1}}, c.Items())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_FindByUserIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `carts` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_items", "created_at", "updated_at"}))

	_, err := NewCartRepository(db).FindByUserID(context.Background(), 9)

	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 改数量只UPDATE已有行(created_at不动)，删掉的行按product_id删除，新行插入
func TestCartRepository_SaveUpsertsLines(t *testing.T) {
	db, mock := newMockDB(t)
	inserted := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	c := cart.Restore(5, 9, []cart.Item{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}}, inserted, inserted)
	require.NoError(t, c.SetQuantity(1, 5))
	require.NoError(t, c.RemoveItem(2))
	require.NoError(t, c.AddItem(3, 2))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `carts` SET `total_items`=\\?,`updated_at`=\\? WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `cart_items` WHERE cart_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity", "created_at", "updated_at"}).
			AddRow(11, 5, 1, 1, inserted, inserted).
			AddRow(12, 5, 2, 1, inserted, inserted))
	mock.ExpectExec("UPDATE `cart_items` SET `quantity`=\\?,`updated_at`=\\? WHERE id = \\?").
		WithArgs(5, sqlmock.AnyArg(), 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `cart_items` WHERE cart_id = \\? AND product_id IN \\(\\?\\)").
		WithArgs(5, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `cart_items`").
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()

	require.NoError(t, NewCartRepository(db).Save(context.Background(), c))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SaveMissingCart(t *testing.T) {
	db, mock := newMockDB(t)
	c := cart.Restore(5, 9, nil, time.Now(), time.Now())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `carts`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewCartRepository(db).Save(context.Background(), c)

	assert.ErrorIs(t, err, cart.ErrCartNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
