package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

const (
	// CodeLength is the number of digits in a generated code.
	CodeLength = 6

	codeFloor = 100000
	codeSpan  = 900000
)

// Generator produces one-time passcodes.
type Generator interface {
	Generate() (string, error)
}

// Numeric draws uniform 6-digit codes from an entropy source.
type Numeric struct {
	entropy io.Reader
}

// NewNumeric returns a generator backed by crypto/rand.
func NewNumeric() *Numeric {
	return &Numeric{entropy: rand.Reader}
}

// Generate returns a code in [100000, 999999]. It fails only when the entropy
// source does.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.entropy, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("otp: read entropy: %w", err)
	}
	return strconv.FormatInt(codeFloor+v.Int64(), 10), nil
}
