// Package clock abstracts the wall clock so expiry, rate windows and token
// lifetimes can be driven by a manual clock in tests.
package clock
