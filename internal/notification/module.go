package notification

import (
	"context"

	"github.com/mehran-jafari/account/internal/notification/inbound"
	outsms "github.com/mehran-jafari/account/internal/notification/outbound/sms"
	"github.com/mehran-jafari/account/internal/notification/usecase"
	"github.com/mehran-jafari/account/internal/pkg/config"
	"github.com/mehran-jafari/account/internal/pkg/goroutine"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
	"github.com/mehran-jafari/account/internal/pkg/messaging"
	"github.com/mehran-jafari/account/internal/pkg/ratelimit"
	"github.com/mehran-jafari/account/internal/pkg/sms"
	"github.com/mehran-jafari/account/internal/pkg/uid"
	"github.com/mehran-jafari/account/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	Messaging  messaging.Messaging
	Config     config.Config
	Instrument instrument.Instrumentation
	UUID       uid.StringID
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
	Limiter    ratelimit.Limiter
	SMS        sms.SMS
}

func New(dep Dependency) error {
	repoSMS := outsms.New(dep.SMS, dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		RepoSMS:    repoSMS,
		Config:     dep.Config,
		Limiter:    dep.Limiter,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}
