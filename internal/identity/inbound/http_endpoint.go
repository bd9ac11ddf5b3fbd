package inbound

import (
	"strconv"

	"github.com/shandysiswandi/otpgate/internal/identity/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Phone:      req.Phone,
		Profession: req.Profession,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		UserID:    strconv.FormatInt(resp.UserID, 10),
		Email:     resp.Email,
		ExpiresIn: resp.ExpiresIn,
	}, nil
}

func (h *HTTPEndpoint) RegisterVerify(r *router.Request) (any, error) {
	var req RegisterVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterVerify(r.Context(), usecase.RegisterVerifyInput{
		Email: req.Email,
		Code:  req.Code,
	}); err != nil {
		return nil, err
	}

	return &router.Reply{Msg: "Email verified successfully"}, nil
}

func (h *HTTPEndpoint) RegisterResend(r *router.Request) (any, error) {
	var req RegisterResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RegisterResend(r.Context(), usecase.RegisterResendInput{Email: req.Email}); err != nil {
		return nil, err
	}

	// Same reply whether or not a pending account exists.
	return &router.Reply{Msg: "If the account is pending verification, a new OTP has been sent"}, nil
}

func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		User:        toUser(resp.User),
	}, nil
}

func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{Page: page, Size: size})
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, toUser(u))
	}

	return UserListResponse{Users: users, page: resp.Page, size: resp.Size, total: resp.Total}, nil
}

func (h *HTTPEndpoint) UserUpdate(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	var req UserUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.UserUpdate(r.Context(), usecase.UserUpdateInput{
		ID:         id,
		Name:       req.Name,
		Phone:      req.Phone,
		Profession: req.Profession,
	})
	if err != nil {
		return nil, err
	}

	return UserResponse{toUser(*user)}, nil
}

func (h *HTTPEndpoint) UserDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.UserDelete(r.Context(), usecase.UserDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return &router.Reply{Msg: "User deleted successfully"}, nil
}
