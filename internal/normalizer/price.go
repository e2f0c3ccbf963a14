package normalizer

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xampe11/nft-marketplace-project/internal/domain"
)

// WeiToEther converts an amount in the smallest native unit to a decimal ether string
// The result always carries a fractional part, e.g. 1000000000000000000 -> "1.0"
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0.0"
	}

	s := decimal.NewFromBigInt(wei, -domain.NATIVE_DECIMALS).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
