package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

func parseQty(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
