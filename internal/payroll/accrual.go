// accrual.go - Elapsed-time salary accrual arithmetic.
//
// The rate itself stays encrypted; only elapsed time is public. The plain
// form exists for the fallback path and for property tests; the ledger's
// withdrawal path scales the encrypted rate through the compute service.

package payroll

import "math/bits"

// Elapsed returns now - lastAction in seconds. Fails with
// ErrInvalidTimeOrdering if the clock reads before the last action; the
// per-account clock must be monotonic.
func Elapsed(lastAction, now int64) (uint64, error) {
	if now < lastAction {
		return 0, ErrInvalidTimeOrdering
	}
	return uint64(now - lastAction), nil
}

// AccruedDelta computes rate * (now - lastAction) with checked
// multiplication. now == lastAction yields zero, which is a valid no-op,
// not an error.
func AccruedDelta(rate uint64, lastAction, now int64) (uint64, error) {
	elapsed, err := Elapsed(lastAction, now)
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(rate, elapsed)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

// checkedAdd returns a + b, failing with ErrArithmeticOverflow on wrap.
func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

// checkedSub returns a - b, failing with ErrArithmeticUnderflow if b > a.
func checkedSub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrArithmeticUnderflow
	}
	return diff, nil
}
