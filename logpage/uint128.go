// uint128.go
//
// 128-bit unsigned counters
//
// The SMART/health page models its lifetime counters as 128-bit values: you
// would need a billion IOPs for billions of seconds to overflow them, so they
// only ever grow. Go has no native 128-bit integer, so we carry two 64-bit
// limbs and keep full precision everywhere (the original tool truncated to 64
// bits on 32-bit hosts; we never do).
package logpage

import (
	"errors"
	"math/bits"
)

// Uint128Digits is the most decimal digits a 128-bit value can render to.
const Uint128Digits = 39

var ErrFormatOverflow = errors.New("uint128 formatting buffer too small")

type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Uint128FromLE decodes a 16-byte little-endian field.
func Uint128FromLE(b []byte) Uint128 {
	_ = b[15]
	var u Uint128
	for i := 7; i >= 0; i-- {
		u.Lo = u.Lo<<8 | uint64(b[i])
		u.Hi = u.Hi<<8 | uint64(b[i+8])
	}
	return u
}

func (u Uint128) IsZero() bool {
	return u.Lo == 0 && u.Hi == 0
}

// divmod10 returns u/10 and u%10. The high-limb remainder is always below the
// divisor, so bits.Div64 cannot panic.
func (u Uint128) divmod10() (Uint128, byte) {
	qhi := u.Hi / 10
	rem := u.Hi % 10
	qlo, rem := bits.Div64(rem, u.Lo, 10)
	return Uint128{Lo: qlo, Hi: qhi}, byte(rem)
}

// FormatUint128 renders u in decimal into the caller's buffer, filling from
// the end. No leading zeros except the literal "0". If the digits do not fit
// the buffer, the result is empty and ErrFormatOverflow is returned; the
// buffer is never overrun.
func FormatUint128(u Uint128, buf []byte) (string, error) {
	end := len(buf)
	if u.IsZero() {
		if end < 1 {
			return "", ErrFormatOverflow
		}
		buf[end-1] = '0'
		return string(buf[end-1:]), nil
	}
	i := end
	for !u.IsZero() {
		if i == 0 {
			return "", ErrFormatOverflow
		}
		var d byte
		u, d = u.divmod10()
		i--
		buf[i] = '0' + d
	}
	return string(buf[i:end]), nil
}

// String renders with a buffer always large enough for 39 digits.
func (u Uint128) String() string {
	var buf [Uint128Digits]byte
	s, _ := FormatUint128(u, buf[:])
	return s
}

// ParseUint128 is the inverse of FormatUint128. Used by verification; a value
// beyond 2^128-1 is an overflow error, not a wrapped result.
func ParseUint128(s string) (Uint128, error) {
	if s == "" {
		return Uint128{}, errors.New("empty uint128 string")
	}
	var u Uint128
	for _, r := range s {
		if r < '0' || r > '9' {
			return Uint128{}, errors.New("invalid digit in uint128 string")
		}
		// u = u*10 + digit, watching both limbs for carry-out
		loCarry, lo10 := bits.Mul64(u.Lo, 10)
		hiSpill, hi10 := bits.Mul64(u.Hi, 10)
		if hiSpill != 0 {
			return Uint128{}, errors.New("uint128 overflow")
		}
		hi := hi10 + loCarry
		if hi < hi10 {
			return Uint128{}, errors.New("uint128 overflow")
		}
		lo, carry := bits.Add64(lo10, uint64(r-'0'), 0)
		hi, carry = bits.Add64(hi, 0, carry)
		if carry != 0 {
			return Uint128{}, errors.New("uint128 overflow")
		}
		u = Uint128{Lo: lo, Hi: hi}
	}
	return u, nil
}
