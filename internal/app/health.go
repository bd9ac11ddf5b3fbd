package app

import (
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type healthData struct {
	Timestamp       time.Time `json:"timestamp"`
	EmailConfigured bool      `json:"email_configured"`
}

func (a *App) health(*router.Request) (any, error) {
	return &router.Reply{
		Msg: "Server is running",
		Data: healthData{
			Timestamp:       a.clock.Now().UTC(),
			EmailConfigured: a.mailConfig.Configured(),
		},
	}, nil
}
