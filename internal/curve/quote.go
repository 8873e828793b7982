package curve

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

const bpsDenominator = 10_000

// AmountOut quotes a constant-product trade against the curve's virtual
// reserves. feeBps is deducted from the input amount before the swap.
func AmountOut(reserveIn, reserveOut, amountIn *big.Int, feeBps uint64) (*big.Int, error) {
	if feeBps >= bpsDenominator {
		return nil, fmt.Errorf("fee bps out of range: %d", feeBps)
	}
	in, overflow := uint256.FromBig(amountIn)
	if overflow {
		return nil, fmt.Errorf("amount in overflows uint256")
	}
	rIn, overflow := uint256.FromBig(reserveIn)
	if overflow {
		return nil, fmt.Errorf("reserve in overflows uint256")
	}
	rOut, overflow := uint256.FromBig(reserveOut)
	if overflow {
		return nil, fmt.Errorf("reserve out overflows uint256")
	}
	if rIn.IsZero() || rOut.IsZero() {
		return nil, fmt.Errorf("empty reserves")
	}

	effective := new(uint256.Int).Mul(in, uint256.NewInt(bpsDenominator-feeBps))
	effective.Div(effective, uint256.NewInt(bpsDenominator))

	// out = reserveOut * effectiveIn / (reserveIn + effectiveIn)
	numerator := new(uint256.Int).Mul(rOut, effective)
	denominator := new(uint256.Int).Add(rIn, effective)
	out := numerator.Div(numerator, denominator)

	return out.ToBig(), nil
}

// ApplySlippage lowers a quoted amount by slippageBps to produce the minimum
// acceptable output for a trade.
func ApplySlippage(amount *big.Int, slippageBps uint64) *big.Int {
	if slippageBps >= bpsDenominator {
		return new(big.Int)
	}
	value, overflow := uint256.FromBig(amount)
	if overflow {
		return new(big.Int).Set(amount)
	}
	value.Mul(value, uint256.NewInt(bpsDenominator-slippageBps))
	value.Div(value, uint256.NewInt(bpsDenominator))
	return value.ToBig()
}
