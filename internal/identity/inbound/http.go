package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/identity/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	RegisterVerify(ctx context.Context, in usecase.RegisterVerifyInput) error
	RegisterResend(ctx context.Context, in usecase.RegisterResendInput) error
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	UserList(ctx context.Context, in usecase.UserListInput) (*usecase.UserListOutput, error)
	UserUpdate(ctx context.Context, in usecase.UserUpdateInput) (*entity.User, error)
	UserDelete(ctx context.Context, in usecase.UserDeleteInput) error
}

// RegisterHTTPEndpoint mounts the auth and user routes. sendLimit, when set,
// guards the routes that email a code.
func RegisterHTTPEndpoint(r *router.Router, uc uc, sendLimit router.Middleware) {
	end := &HTTPEndpoint{uc: uc}

	var sendMws []router.Middleware
	if sendLimit != nil {
		sendMws = append(sendMws, sendLimit)
	}

	r.POST("/auth/register", end.Register, sendMws...)
	r.POST("/auth/verify-otp", end.RegisterVerify)
	r.POST("/auth/resend-otp", end.RegisterResend, sendMws...)
	r.POST("/auth/login", end.Login)

	r.GET("/users", end.UserList)
	r.PUT("/users/:id", end.UserUpdate)
	r.DELETE("/users/:id", end.UserDelete)
}
