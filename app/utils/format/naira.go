package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var naira = accounting.Accounting{Symbol: "₦", Precision: 2, Thousand: ",", Decimal: "."}

func FormatNaira(amount interface{}) string {
	var decAmount decimal.Decimal
	switch v := amount.(type) {
	case decimal.Decimal:
		decAmount = v
	case float64:
		decAmount = decimal.NewFromFloat(v)
	case int:
		decAmount = decimal.NewFromInt(int64(v))
	case int64:
		decAmount = decimal.NewFromInt(v)
	case string:
		parsed, err := decimal.NewFromString(v)
		if err != nil {
			return naira.FormatMoney(decimal.Zero)
		}
		decAmount = parsed
	default:
		return naira.FormatMoney(decimal.Zero)
	}
	return naira.FormatMoney(decAmount)
}
