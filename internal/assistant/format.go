package assistant

import (
	"github.com/Rhymond/go-money"
)

// FormatIDR renders an amount as Indonesian Rupiah for user-facing
// confirmation messages, e.g. 10000000 -> "Rp10.000.000,00".
func FormatIDR(amount float64) string {
	return money.NewFromFloat(amount, money.IDR).Display()
}
