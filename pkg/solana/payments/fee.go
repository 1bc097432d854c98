package payments

import "math"

const feeBpsDenominator = 10_000

// SplitFee divides a checkout fee between the program owner and the
// sponsor. The sponsor share floors on integer division and the remainder
// always goes to the owner, so ownerFee+sponsorFee == totalFee holds for
// every input.
func SplitFee(totalFee, sponsorShareBps uint64) (ownerFee, sponsorFee uint64, err error) {
	product, ok := checkedMulU64(totalFee, sponsorShareBps)
	if !ok {
		return 0, 0, ErrArithmeticOverflow
	}

	sponsorFee = product / feeBpsDenominator
	ownerFee = totalFee - sponsorFee
	return ownerFee, sponsorFee, nil
}

// EnforceMinimumFee clamps a requested registration fee to the program
// minimum.
func EnforceMinimumFee(requestedFee, minFee uint64) uint64 {
	if requestedFee < minFee {
		return minFee
	}
	return requestedFee
}

func checkedAddU64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

func checkedMulU64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}

func checkedAddI64(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, false
	}
	return a + b, true
}

func checkedMulI64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == -1 && b == math.MinInt64 {
		return 0, false
	}
	if b == -1 && a == math.MinInt64 {
		return 0, false
	}
	product := a * b
	if product/a != b {
		return 0, false
	}
	return product, true
}
