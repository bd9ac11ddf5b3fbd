package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (*usecase.IssueOutput, error)
	Resend(ctx context.Context, in usecase.ResendInput) (*usecase.IssueOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) error
	Snapshot(ctx context.Context) (*usecase.SnapshotOutput, error)
}

// HTTPOptions controls which routes are mounted and how sends are limited.
type HTTPOptions struct {
	// Debug mounts GET /otp/debug. It must stay off in production.
	Debug bool
	// SendLimit is applied to issue and resend; both share one counter.
	SendLimit router.Middleware
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, opts HTTPOptions) {
	end := &HTTPEndpoint{uc: uc}

	var sendMws []router.Middleware
	if opts.SendLimit != nil {
		sendMws = append(sendMws, opts.SendLimit)
	}

	r.POST("/otp/issue", end.Issue, sendMws...)
	r.POST("/otp/verify", end.Verify)
	r.POST("/otp/resend", end.Resend, sendMws...)

	if opts.Debug {
		r.GET("/otp/debug", end.Debug)
	}
}
