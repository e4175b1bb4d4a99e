package order

import (
	"github.com/shopspring/decimal"
)

// LineDraft 待计价的明细
type LineDraft struct {
	ProductID   uint
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// Totals 计价结果
type Totals struct {
	Items []OrderItem
	Total decimal.Decimal
}

// CalculateTotals 计算每行金额和总额
// 纯函数，全程使用十进制定点运算，结果可精确复现
// 单价为负或数量非正时返回ErrInvalidAmount
func CalculateTotals(lines []LineDraft) (Totals, error) {
	items := make([]OrderItem, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		if line.Price.IsNegative() {
			return Totals{}, ErrInvalidAmount.WithMessage("商品%d单价不能为负", line.ProductID)
		}
		if line.Quantity <= 0 {
			return Totals{}, ErrInvalidAmount.WithMessage("商品%d数量必须大于0", line.ProductID)
		}

		amount := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductPrice: line.Price,
			Quantity:     line.Quantity,
			Amount:       amount,
		})
		total = total.Add(amount)
	}

	return Totals{Items: items, Total: total}, nil
}
