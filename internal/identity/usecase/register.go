package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	otpentity "github.com/shandysiswandi/otpgate/internal/otp/entity"
	otpuc "github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
)

const registerLockDuration = 30 * time.Second

type RegisterInput struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Password   string `json:"password" validate:"required,password"`
	Name       string `json:"name" validate:"required,min=2,max=100,alphaspace"`
	Phone      string `json:"phone" validate:"required,max=32,phone"`
	Profession string `json:"profession" validate:"max=100"`
}

type RegisterOutput struct {
	UserID    int64
	Email     string
	ExpiresIn int64 // seconds until the emailed code expires
}

// Register creates an unverified account and emails its verification code.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.Email = otpentity.NormalizeSubject(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Profession = strings.TrimSpace(in.Profession)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if s.idemp == nil {
		return s.register(ctx, in)
	}

	var out *RegisterOutput
	err := s.idemp.Exec(ctx, "register:"+in.Email, func(ctx context.Context) error {
		var err error
		out, err = s.register(ctx, in)
		return err
	}, idempotency.WithLockDuration(registerLockDuration), idempotency.WithRetryFailed())
	switch {
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "registration already in progress", "email", in.Email)
		return nil, goerror.NewBusiness("Registration already in progress", goerror.CodeConflict)
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	case err != nil:
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to guard registration", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

func (s *Usecase) register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	exists, err := s.repoDB.ExistsByEmail(ctx, in.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo check email exists", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if exists {
		slog.InfoContext(ctx, "email already registered", "email", in.Email)
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}

	hashedPassword, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return nil, goerror.NewServer(err)
	}

	newUser := entity.NewUser{
		ID:           s.uid.Generate(),
		Email:        in.Email,
		Name:         in.Name,
		Phone:        in.Phone,
		Profession:   in.Profession,
		PasswordHash: string(hashedPassword),
		Status:       entity.UserStatusUnverified,
	}

	err = s.repoDB.CreateUser(ctx, newUser)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "email", newUser.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	issued, err := s.otp.Issue(ctx, otpuc.IssueInput{
		Subject: newUser.Email,
		Name:    newUser.Name,
		Purpose: otpentity.PurposeRegistration.String(),
	})
	if err != nil {
		// The account stays unverified; the user can ask for a new code.
		slog.ErrorContext(ctx, "failed to issue registration otp", "user_id", newUser.ID, "error", err)
		return nil, err
	}

	return &RegisterOutput{
		UserID:    newUser.ID,
		Email:     newUser.Email,
		ExpiresIn: issued.ExpiresIn,
	}, nil
}
