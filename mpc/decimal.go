package mpc

import (
	"math"
	"math/big"

	"github.com/ericlagergren/decimal"
)

// decimalGuard is the number of decimal digits carried past Prec() when a
// value crosses into the decimal backend.
const decimalGuard = 4

// decimalContext returns the decimal context matching the precision of c.
func (c Context) decimalContext() decimal.Context {
	digits := int(math.Ceil(float64(c.Prec())*math.Log10(2))) + decimalGuard
	return decimal.Context{Precision: digits}
}

// toDecimal converts x to a decimal at the precision of c.
func (c Context) toDecimal(x *big.Float) *decimal.Big {
	d := c.decimalContext()
	z := new(decimal.Big)
	z.Context = d
	if _, ok := z.SetString(x.Text('e', d.Precision)); !ok {
		panic("mpc: cannot convert " + x.String() + " to decimal")
	}
	return z
}

// fromDecimal converts z back to a binary float at the precision of c.
func (c Context) fromDecimal(z *decimal.Big) *big.Float {
	f, _, err := big.ParseFloat(z.String(), 10, c.Prec(), big.ToNearestEven)
	if err != nil {
		panic("mpc: cannot convert decimal " + z.String() + ": " + err.Error())
	}
	return f
}
