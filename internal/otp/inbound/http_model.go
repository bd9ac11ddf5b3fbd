package inbound

import "time"

type DeliveryContext struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

type IssueRequest struct {
	Subject string          `json:"subject"`
	Context DeliveryContext `json:"context"`
}

type IssueResponse struct {
	Subject   string `json:"subject"`
	ExpiresIn int64  `json:"expires_in"`
}

func (IssueResponse) Message() string {
	return "OTP sent successfully to your email address"
}

type ResendResponse struct {
	IssueResponse
}

func (ResendResponse) Message() string {
	return "New OTP sent successfully"
}

type VerifyRequest struct {
	Subject string `json:"subject"`
	Code    string `json:"code"`
}

type DebugItem struct {
	Subject   string    `json:"subject"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	ExpiresIn string    `json:"expires_in"`
}

type DebugResponse struct {
	Items []DebugItem `json:"active_otps"`
	Count int         `json:"count"`
}

func (DebugResponse) Message() string {
	return "Active OTP records"
}
