package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type UserUpdateInput struct {
	ID         int64  `validate:"required,gt=0"`
	Name       string `json:"name" validate:"required,min=2,max=100,alphaspace"`
	Phone      string `json:"phone" validate:"required,max=32,phone"`
	Profession string `json:"profession" validate:"max=100"`
}

func (s *Usecase) UserUpdate(ctx context.Context, in UserUpdateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserUpdate")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Profession = strings.TrimSpace(in.Profession)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.self(ctx, in.ID); err != nil {
		return nil, err
	}

	err := s.repoDB.UpdateUser(ctx, entity.UpdateUser{
		ID:         in.ID,
		Name:       in.Name,
		Phone:      in.Phone,
		Profession: in.Profession,
	})
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user not found", "user_id", in.ID)
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo update user", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, in.ID, false)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return user, nil
}
