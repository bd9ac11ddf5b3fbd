package entity

// Result is the outcome of a verification attempt.
type Result int

const (
	ResultNotFoundOrExpired Result = iota
	ResultMismatch
	ResultValid
)

func (r Result) String() string {
	switch r {
	case ResultValid:
		return "valid"
	case ResultMismatch:
		return "mismatch"
	default:
		return "not_found_or_expired"
	}
}

// Purpose is the reason a code was sent; it only changes the email wording.
type Purpose string

const (
	PurposeVerification Purpose = "verification"
	PurposeRegistration Purpose = "registration"
	PurposeResend       Purpose = "resend"
)

func (p Purpose) String() string {
	return string(p)
}

// Ensure falls back to verification for unknown or empty values.
func (p Purpose) Ensure() Purpose {
	switch p {
	case PurposeRegistration, PurposeResend:
		return p
	default:
		return PurposeVerification
	}
}

// DeliveryContext carries the per-message details passed to the delivery
// channel alongside the code.
type DeliveryContext struct {
	Name    string
	Purpose Purpose
}
