package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mehran-jafari/account/internal/auth/inbound"
	"github.com/mehran-jafari/account/internal/auth/outbound/db"
	"github.com/mehran-jafari/account/internal/auth/outbound/mq"
	"github.com/mehran-jafari/account/internal/auth/usecase"
	"github.com/mehran-jafari/account/internal/pkg/clock"
	"github.com/mehran-jafari/account/internal/pkg/config"
	"github.com/mehran-jafari/account/internal/pkg/hash"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
	"github.com/mehran-jafari/account/internal/pkg/jwt"
	"github.com/mehran-jafari/account/internal/pkg/messaging"
	"github.com/mehran-jafari/account/internal/pkg/otpcode"
	"github.com/mehran-jafari/account/internal/pkg/ratelimit"
	"github.com/mehran-jafari/account/internal/pkg/router"
	"github.com/mehran-jafari/account/internal/pkg/uid"
	"github.com/mehran-jafari/account/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	CodeGen    otpcode.Generator          `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbAuth,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		Bcrypt:        dep.Bcrypt,
		CodeGen:       dep.CodeGen,
		Limiter:       dep.Limiter,
		UID:           dep.UID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
