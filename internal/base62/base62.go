// Package base62 renders non-negative integers over the alphabet
// 0-9, a-z, A-Z, in that order.
package base62

import (
	"errors"
	"fmt"
	"math"
)

const (
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	base     = uint64(len(Alphabet))

	// MaxLen is the length of the encoding of math.MaxUint64.
	MaxLen = 11
)

var (
	ErrInvalidSymbol = errors.New("invalid base62 symbol")
	ErrOverflow      = errors.New("base62 value overflows uint64")
)

var index = func() [256]int8 {
	var idx [256]int8
	for i := range idx {
		idx[i] = -1
	}

	for i := 0; i < len(Alphabet); i++ {
		idx[Alphabet[i]] = int8(i)
	}

	return idx
}()

// Encode returns the base62 form of n, most significant digit first. Zero
// encodes as "0"; no other value has a leading zero.
func Encode(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [MaxLen]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%base]
		n /= base
	}

	return string(buf[i:])
}

// Decode is the inverse of Encode.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty input: %w", ErrInvalidSymbol)
	}

	var n uint64

	for i := 0; i < len(s); i++ {
		v := index[s[i]]
		if v < 0 {
			return 0, fmt.Errorf("%q at position %d: %w", s[i], i, ErrInvalidSymbol)
		}

		if n > (math.MaxUint64-uint64(v))/base {
			return 0, fmt.Errorf("%q: %w", s, ErrOverflow)
		}

		n = n*base + uint64(v)
	}

	return n, nil
}
