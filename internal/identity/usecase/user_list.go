package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type UserListInput struct {
	Page int32
	Size int32
}

type UserListOutput struct {
	Page  int32
	Size  int32
	Total int64
	Users []entity.User
}

// UserList pages through verified accounts, newest first.
func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > maxPageSize {
		in.Size = defaultPageSize
	}
	page := max(in.Page, 1)

	users, total, err := s.repoDB.GetUserList(ctx, entity.UserListFilter{
		Status: entity.UserStatusActive,
		Limit:  in.Size,
		Offset: (page - 1) * in.Size,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:  page,
		Size:  in.Size,
		Total: total,
		Users: users,
	}, nil
}
