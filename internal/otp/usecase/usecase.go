package usecase

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type manager interface {
	Issue(ctx context.Context, subject string) (entity.Record, error)
	Resend(ctx context.Context, subject string) (entity.Record, error)
	Verify(ctx context.Context, subject, code string) (entity.Result, error)
	Discard(ctx context.Context, rec entity.Record) (bool, error)
	Snapshot(ctx context.Context) ([]entity.Record, error)
}

type deliverer interface {
	Deliver(ctx context.Context, subject, code string, dc entity.DeliveryContext) error
}

type Usecase struct {
	manager   manager
	delivery  deliverer
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation
	rollback  bool
}

type Dependency struct {
	Manager    manager
	Delivery   deliverer
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	// RollbackOnDeliveryFailure discards a code whose email could not be sent.
	RollbackOnDeliveryFailure bool
}

func New(dep Dependency) *Usecase {
	ins := dep.Instrument
	if ins == nil {
		ins = instrument.NewNoop()
	}

	return &Usecase{
		manager:   dep.Manager,
		delivery:  dep.Delivery,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       ins,
		rollback:  dep.RollbackOnDeliveryFailure,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}
