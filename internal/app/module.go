package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/identity"
	"github.com/shandysiswandi/otpgate/internal/notification"
	"github.com/shandysiswandi/otpgate/internal/otp"
)

func (a *App) initModules() {
	identityEnabled := a.config.GetBool("modules.identity.enabled")

	// identity issues its registration codes through the otp module
	if !a.config.GetBool("modules.otp.enabled") && !identityEnabled {
		slog.Info("module otp is disabled")
	} else {
		otpUC, err := otp.New(otp.Dependency{
			Ctx:        a.ctx,
			CacheConn:  a.cacheConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Mail:       a.mail,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
			SendLimit:  a.sendLimit,
		})
		if err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}

		if identityEnabled {
			if err := identity.New(identity.Dependency{
				DBConn:      a.dbConn,
				OTP:         otpUC,
				Router:      a.router,
				Messaging:   a.messaging,
				Instrument:  a.ins,
				UID:         a.uid,
				Bcrypt:      a.bcrypt,
				Clock:       a.clock,
				Validator:   a.validator,
				JWT:         a.jwt,
				Idempotency: a.idemp,
				SendLimit:   a.sendLimit,
			}); err != nil {
				slog.Error("failed to init module identity", "error", err)
				os.Exit(1)
			}
		}
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
