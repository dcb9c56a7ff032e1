package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mehran-jafari/account/internal/pkg/clock"
	"github.com/mehran-jafari/account/internal/pkg/config"
	"github.com/mehran-jafari/account/internal/pkg/goroutine"
	"github.com/mehran-jafari/account/internal/pkg/hash"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
	"github.com/mehran-jafari/account/internal/pkg/jwt"
	"github.com/mehran-jafari/account/internal/pkg/messaging"
	"github.com/mehran-jafari/account/internal/pkg/otpcode"
	"github.com/mehran-jafari/account/internal/pkg/ratelimit"
	"github.com/mehran-jafari/account/internal/pkg/router"
	"github.com/mehran-jafari/account/internal/pkg/sms"
	"github.com/mehran-jafari/account/internal/pkg/uid"
	"github.com/mehran-jafari/account/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	codeGen   otpcode.Generator
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	limiter   ratelimit.Limiter
	sms       sms.SMS
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initSMS()
	app.initMessaging()
	app.initHTTPServer()
	app.registerHealth()
	app.initModules()
	app.initClosers()

	return app
}
