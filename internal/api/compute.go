package api

import "math/big"

var (
	bigOne = big.NewInt(1)
	bigTwo = big.NewInt(2)
	bigSix = big.NewInt(6)
)

// SumOfSquares returns the sum of i*i for i in [0, n), using the closed form
// (n-1)n(2n-1)/6. It is 0 for n <= 0.
func SumOfSquares(n int64) *big.Int {
	if n <= 0 {
		return new(big.Int)
	}

	bn := big.NewInt(n)
	a := new(big.Int).Sub(bn, bigOne)
	b := new(big.Int).Mul(bn, bigTwo)
	b.Sub(b, bigOne)

	r := new(big.Int).Mul(a, bn)
	r.Mul(r, b)
	return r.Quo(r, bigSix)
}
