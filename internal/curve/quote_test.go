package curve

import (
	"math/big"
	"testing"
)

func TestAmountOutNoFee(t *testing.T) {
	// out = 2000 * 100 / (1000 + 100) = 190
	out, err := AmountOut(big.NewInt(1000), big.NewInt(2000), big.NewInt(100), 0)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if out.String() != "190" {
		t.Fatalf("AmountOut = %s, want 190", out)
	}
}

func TestAmountOutWithFee(t *testing.T) {
	// 1% fee: effective in = 99, out = 2000 * 99 / (1000 + 99) = 180
	out, err := AmountOut(big.NewInt(1000), big.NewInt(2000), big.NewInt(100), 100)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if out.String() != "180" {
		t.Fatalf("AmountOut = %s, want 180", out)
	}
}

func TestAmountOutRejectsEmptyReserves(t *testing.T) {
	if _, err := AmountOut(big.NewInt(0), big.NewInt(2000), big.NewInt(100), 0); err == nil {
		t.Fatalf("expected error for empty reserve in")
	}
	if _, err := AmountOut(big.NewInt(1000), big.NewInt(0), big.NewInt(100), 0); err == nil {
		t.Fatalf("expected error for empty reserve out")
	}
}

func TestAmountOutRejectsFeeOutOfRange(t *testing.T) {
	if _, err := AmountOut(big.NewInt(1000), big.NewInt(2000), big.NewInt(100), 10_000); err == nil {
		t.Fatalf("expected error for 100%% fee")
	}
}

func TestApplySlippage(t *testing.T) {
	// 0.5% slippage on 10000 leaves 9950.
	got := ApplySlippage(big.NewInt(10_000), 50)
	if got.String() != "9950" {
		t.Fatalf("ApplySlippage = %s, want 9950", got)
	}

	if got := ApplySlippage(big.NewInt(10_000), 10_000); got.Sign() != 0 {
		t.Fatalf("full slippage should floor at zero, got %s", got)
	}
}
