package models

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// BigInt is an arbitrary-precision unsigned integer column, used for the
// 18-decimal fixed-point credit amounts. Stored as numeric(78,0) so the full
// uint256 range of the original ledger fits without truncation.
type BigInt struct {
	big.Int
}

func NewBigInt(v int64) *BigInt {
	b := new(BigInt)
	b.SetInt64(v)
	return b
}

func BigIntFromString(s string) (*BigInt, error) {
	b := new(BigInt)
	if _, ok := b.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid integer string: %q", s)
	}
	return b, nil
}

// WrapBigInt copies v into a BigInt.
func WrapBigInt(v *big.Int) *BigInt {
	b := new(BigInt)
	if v != nil {
		b.Set(v)
	}
	return b
}

// Clone returns an independent copy.
func (b *BigInt) Clone() *BigInt {
	c := new(BigInt)
	c.Set(&b.Int)
	return c
}

func (b *BigInt) Value() (driver.Value, error) {
	if b == nil {
		return "0", nil
	}
	return b.String(), nil
}

func (b *BigInt) Scan(src any) error {
	if src == nil {
		b.SetInt64(0)
		return nil
	}
	switch v := src.(type) {
	case int64:
		b.SetInt64(v)
		return nil
	case string:
		if _, ok := b.SetString(v, 10); !ok {
			return fmt.Errorf("cannot scan %q into BigInt", v)
		}
		return nil
	case []byte:
		if _, ok := b.SetString(string(v), 10); !ok {
			return fmt.Errorf("cannot scan %q into BigInt", v)
		}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BigInt", src)
	}
}

// MarshalJSON renders the value as a quoted decimal string. 18-decimal amounts
// do not fit in a JSON number.
func (b *BigInt) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte(`"0"`), nil
	}
	return []byte(`"` + b.String() + `"`), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if _, ok := b.SetString(s, 10); !ok {
		return fmt.Errorf("cannot unmarshal %q into BigInt", string(data))
	}
	return nil
}
