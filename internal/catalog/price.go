package catalog

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// priceExponent quantizes amounts to two fraction digits.
const priceExponent = -2

var decimalCtx = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundHalfUp
	return c
}()

// ParsePrice parses a decimal amount. Surrounding whitespace is ignored;
// NaN and infinities are rejected.
func ParsePrice(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return nil, fmt.Errorf("parse price %q: not a finite number", s)
	}
	return d, nil
}

// FormatPrice renders d with exactly two fraction digits, rounding half up.
func FormatPrice(d *apd.Decimal) (string, error) {
	var q apd.Decimal
	if _, err := decimalCtx.Quantize(&q, d, priceExponent); err != nil {
		return "", fmt.Errorf("format price: %w", err)
	}
	return q.Text('f'), nil
}

// NormalizePrice parses s and re-formats it with two fraction digits.
func NormalizePrice(s string) (string, error) {
	d, err := ParsePrice(s)
	if err != nil {
		return "", err
	}
	return FormatPrice(d)
}

// LineTotal returns price × count.
func LineTotal(price *apd.Decimal, count int) (*apd.Decimal, error) {
	var out apd.Decimal
	if _, err := decimalCtx.Mul(&out, price, apd.New(int64(count), 0)); err != nil {
		return nil, fmt.Errorf("line total: %w", err)
	}
	return &out, nil
}

// AddTo adds x into acc.
func AddTo(acc, x *apd.Decimal) error {
	if _, err := decimalCtx.Add(acc, acc, x); err != nil {
		return fmt.Errorf("add amount: %w", err)
	}
	return nil
}
