package sales

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// minorUnits is the number of decimal places of the store currency.
const minorUnits = 2

// ComputeTotals validates items and returns them with TotalPrice filled in,
// along with the sum of every line total. It has no side effects.
func ComputeTotals(items []ItemInput) ([]SaleItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, invalid("items", "at least one item is required")
	}

	out := make([]SaleItem, 0, len(items))
	total := decimal.Zero
	for i, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return nil, decimal.Zero, invalid(itemField(i, "productId"), "product is required")
		}
		if item.Quantity < 1 {
			return nil, decimal.Zero, invalid(itemField(i, "quantity"), "must be at least 1, got %d", item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return nil, decimal.Zero, invalid(itemField(i, "unitPrice"), "must not be negative, got %s", item.UnitPrice)
		}

		line := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(minorUnits)
		out = append(out, SaleItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: line,
		})
		total = total.Add(line)
	}

	return out, total, nil
}

func itemField(i int, name string) string {
	return fmt.Sprintf("items[%d].%s", i, name)
}
