// Package vecfmt renders embedding vectors as text. The format is the only
// artifact that leaves the process and is parsed back by downstream
// consumers, so every element is written as the shortest decimal that
// round-trips to the same float32 bit pattern.
//
// Layout follows the ryu conventions consumers already expect: integral
// values keep a trailing ".0", values in [1e-6, 1e13) use plain decimal
// notation and everything else uses an exponent without a plus sign
// ("1e-7", "1.5e20").
package vecfmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Format serializes v as "[f0,f1,...]". An empty or nil vector yields "[]".
func Format(v []float32) (string, error) {
	b, err := Append(make([]byte, 0, 2+len(v)*12), v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Append appends the serialized form of v to dst. On error dst is returned
// unchanged.
func Append(dst []byte, v []float32) ([]byte, error) {
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return dst, &SerializationError{Index: i, Value: f}
		}
	}
	out := append(dst, '[')
	for i, f := range v {
		if i != 0 {
			out = append(out, ',')
		}
		out = AppendFloat32(out, f)
	}
	return append(out, ']'), nil
}

// AppendFloat32 appends the shortest round-trip text of a finite f.
// Non-finite input is the caller's responsibility.
func AppendFloat32(dst []byte, f float32) []byte {
	var scratch [32]byte
	s := strconv.AppendFloat(scratch[:0], float64(f), 'e', -1, 32)
	if s[0] == '-' {
		dst = append(dst, '-')
		s = s[1:]
	}

	// s is "d[.ddd]e±XX"; split into the digit string and decimal exponent.
	var digits [24]byte
	n := 0
	i := 0
	for ; s[i] != 'e'; i++ {
		if s[i] != '.' {
			digits[n] = s[i]
			n++
		}
	}
	expNeg := s[i+1] == '-'
	exp := 0
	for _, c := range s[i+2:] {
		exp = exp*10 + int(c-'0')
	}
	if expNeg {
		exp = -exp
	}
	if n == 1 && digits[0] == '0' {
		return append(dst, '0', '.', '0')
	}

	d := digits[:n]
	kk := exp + 1 // 10^(kk-1) <= |f| < 10^kk
	k := kk - n
	switch {
	case k >= 0 && kk <= 13:
		dst = append(dst, d...)
		for j := n; j < kk; j++ {
			dst = append(dst, '0')
		}
		return append(dst, '.', '0')
	case kk > 0 && kk <= 13:
		dst = append(dst, d[:kk]...)
		dst = append(dst, '.')
		return append(dst, d[kk:]...)
	case kk > -6 && kk <= 0:
		dst = append(dst, '0', '.')
		for j := kk; j < 0; j++ {
			dst = append(dst, '0')
		}
		return append(dst, d...)
	case n == 1:
		dst = append(dst, d[0], 'e')
		return strconv.AppendInt(dst, int64(kk-1), 10)
	default:
		dst = append(dst, d[0], '.')
		dst = append(dst, d[1:]...)
		dst = append(dst, 'e')
		return strconv.AppendInt(dst, int64(kk-1), 10)
	}
}

// SerializationError reports a vector element that has no textual form.
type SerializationError struct {
	Index int
	Value float32
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("cannot serialize non-finite value %v at index %d", e.Value, e.Index)
}

// Kind classifies the error for the boundary layer.
func (e *SerializationError) Kind() string { return "serialization" }

// IsSerialization reports whether err wraps a *SerializationError.
func IsSerialization(err error) bool {
	var e *SerializationError
	return errors.As(err, &e)
}
