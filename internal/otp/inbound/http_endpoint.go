package inbound

import (
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP issue, verify and resend handlers.
type HTTPEndpoint struct {
	uc uc
}

// Issue sends a fresh code to the subject.
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Subject: req.Subject,
		Name:    req.Context.Name,
		Purpose: req.Context.Purpose,
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{Subject: resp.Subject, ExpiresIn: resp.ExpiresIn}, nil
}

// Resend replaces the pending code and sends the new one.
func (h *HTTPEndpoint) Resend(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Resend(r.Context(), usecase.ResendInput{
		Subject: req.Subject,
		Name:    req.Context.Name,
	})
	if err != nil {
		return nil, err
	}

	return ResendResponse{IssueResponse{Subject: resp.Subject, ExpiresIn: resp.ExpiresIn}}, nil
}

func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Subject: req.Subject,
		Code:    req.Code,
	}); err != nil {
		return nil, err
	}

	return &router.Reply{Msg: "OTP verified successfully"}, nil
}

// Debug lists pending codes. Only mounted outside production.
func (h *HTTPEndpoint) Debug(r *router.Request) (any, error) {
	resp, err := h.uc.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}

	items := make([]DebugItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		items = append(items, DebugItem{
			Subject:   it.Subject,
			Code:      it.Code,
			ExpiresAt: it.ExpiresAt,
			ExpiresIn: strconv.FormatInt(int64(it.ExpiresIn.Seconds()), 10) + "s",
		})
	}

	return DebugResponse{Items: items, Count: resp.Count}, nil
}
