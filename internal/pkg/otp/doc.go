// Package otp generates numeric one-time passcodes.
//
// Codes are uniform over [100000, 999999] and drawn from crypto/rand, so they
// never carry a leading zero and every value is equally likely.
package otp
