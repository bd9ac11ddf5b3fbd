package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/otpgate/internal/otp/inbound"
	"github.com/shandysiswandi/otpgate/internal/otp/lifecycle"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/delivery"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"github.com/shandysiswandi/otpgate/internal/pkg/otp"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrRedisRequired is returned when otp.store is redis but no client is configured.
var ErrRedisRequired = errors.New("otp: redis store selected but redis is not configured")

type Dependency struct {
	// Ctx bounds the background sweep; nil disables it.
	Ctx        context.Context
	CacheConn  redis.UniversalClient
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// SendLimit guards issue and resend.
	SendLimit router.Middleware
}

// New wires the OTP module and returns its usecase for other modules to call.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	st, err := newStore(dep)
	if err != nil {
		return nil, err
	}

	ttl := dep.Config.GetSecond("otp.ttl_seconds")
	if ttl <= 0 {
		ttl = lifecycle.DefaultTTL
	}

	mgr := lifecycle.New(lifecycle.Dependency{
		Store:     st,
		Generator: otp.NewNumeric(),
		Version:   dep.UUID,
		Clock:     dep.Clock,
		TTL:       ttl,
	})

	dlv := delivery.NewEmail(dep.Mail, delivery.EmailConfig{
		AppName:       dep.Config.GetString("app.name"),
		TTL:           ttl,
		RatePerSecond: dep.Config.GetFloat64("mail.rate_per_second"),
		Burst:         dep.Config.GetInt("mail.burst"),
	}, dep.Clock, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		Manager:                   mgr,
		Delivery:                  dlv,
		Validator:                 dep.Validator,
		Clock:                     dep.Clock,
		Instrument:                dep.Instrument,
		RollbackOnDeliveryFailure: dep.Config.GetBool("otp.rollback_on_delivery_failure"),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.HTTPOptions{
		Debug:     debugEnabled(dep.Config),
		SendLimit: dep.SendLimit,
	})

	if interval := dep.Config.GetSecond("otp.sweep_interval_seconds"); dep.Ctx != nil && interval > 0 {
		dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
			slog.InfoContext(ctx, "Running job for sweeping expired otp records", "interval", interval.String())
			return mgr.RunReaper(ctx, interval)
		})
	}

	return uc, nil
}

// debugEnabled mounts /otp/debug only when otp.debug_enabled is set and
// app.env names a non-production environment.
func debugEnabled(cfg config.Config) bool {
	if !cfg.GetBool("otp.debug_enabled") {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(cfg.GetString("app.env"))) {
	case "development", "local", "test":
		return true
	default:
		return false
	}
}

func newStore(dep Dependency) (lifecycle.Store, error) {
	switch kind := strings.ToLower(dep.Config.GetString("otp.store")); kind {
	case "", StoreMemory:
		return store.NewMemory(), nil
	case StoreRedis:
		if dep.CacheConn == nil {
			return nil, ErrRedisRequired
		}
		return store.NewRedis(dep.CacheConn, dep.Config.GetString("otp.redis_prefix"), dep.Clock, dep.Instrument), nil
	default:
		return nil, fmt.Errorf("otp: unknown store %q", kind)
	}
}
