package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/identity/entity"
	otpuc "github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/jwt"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type UserVerifiedEvent struct {
	UserID     int64
	Email      string
	Name       string
	VerifiedAt time.Time
}

type repoMessaging interface {
	PublishUserVerified(ctx context.Context, msg UserVerifiedEvent) error
}

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string, includeDeleted bool) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64, includeDeleted bool) (*entity.User, error)
	GetUserList(ctx context.Context, f entity.UserListFilter) ([]entity.User, int64, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, in entity.NewUser) error
	MarkVerified(ctx context.Context, email string, at time.Time) (bool, error)
	UpdateUser(ctx context.Context, in entity.UpdateUser) error
	MarkUserDeleted(ctx context.Context, id int64) error
}

// otpFlow is the OTP module's issue/verify workflow, delivery included.
type otpFlow interface {
	Issue(ctx context.Context, in otpuc.IssueInput) (*otpuc.IssueOutput, error)
	Resend(ctx context.Context, in otpuc.ResendInput) (*otpuc.IssueOutput, error)
	Verify(ctx context.Context, in otpuc.VerifyInput) error
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	otp           otpFlow
	idemp         idempotency.Idempotency
	validator     validator.Validator
	bcrypt        hash.Hash
	uid           uid.NumberID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTP           otpFlow
	// Idempotency is optional; registration is not deduplicated without it.
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Bcrypt      hash.Hash
	UID         uid.NumberID
	Clock       clock.Clocker
	JWT         jwt.JWT
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		bcrypt:        dep.Bcrypt,
		uid:           dep.UID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           ins,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		slog.WarnContext(ctx, "request without authentication claims")
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return clm, nil
}

// self rejects callers acting on any account but their own.
func (s *Usecase) self(ctx context.Context, id int64) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if clm.UserID != id {
		slog.WarnContext(ctx, "user tried to modify another account", "user_id", clm.UserID, "target_id", id)
		return nil, goerror.NewBusiness("Not authorized", goerror.CodeForbidden)
	}

	return clm, nil
}
