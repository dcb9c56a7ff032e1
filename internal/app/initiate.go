package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

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
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/segmentio/kafka-go"
)

// must aborts the process when an init step fails. The app cannot serve
// anything without its core dependencies, so there is no recovery path.
func must(err error, msg string, args ...any) {
	if err != nil {
		slog.Error(msg, append(args, "error", err)...)
		os.Exit(1)
	}
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	must(err, "failed to init config")

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          true,
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	must(err, "failed to init instrumentation")
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.codeGen = otpcode.NewNumeric()

	v10, err := validator.NewV10Validator()
	must(err, "failed to init validation v10 validator")
	a.validator = v10

	snow, err := uid.NewSnowflake()
	must(err, "failed to init uid number snowflake")
	a.uid = snow
}

func (a *App) initJWT() {
	tokener, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(a.config.GetString("jwt.secret")),
		Issuer:     a.config.GetString("jwt.issuer"),
		Audiences:  a.config.GetArray("jwt.audiences"),
		TTLMinutes: a.config.GetMinute("jwt.ttl_minutes"),
		Clock:      a.clock,
		UUID:       a.uuid,
	})
	must(err, "failed to init jwt token")
	a.jwt = tokener
}

func (a *App) initDatabase() {
	poolCfg, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	must(err, "failed to parse DB connection string")

	poolCfg.MaxConns = a.config.GetInt32("database.pool.max_conns")
	poolCfg.MinConns = a.config.GetInt32("database.pool.min_conns")
	poolCfg.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
	poolCfg.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
	poolCfg.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, poolCfg)
	must(err, "failed to create DB connection pool")

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	must(pool.Ping(pingCtx), "failed to ping DB")

	a.dbConn = pool
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	must(err, "failed to parse redis url")

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	must(rdb.Ping(pingCtx).Err(), "failed to init redis")

	a.cacheConn = rdb
	a.limiter = ratelimit.New(a.cacheConn)
}

func (a *App) initSMS() {
	driver := strings.TrimSpace(a.config.GetString("sms.driver"))

	client, err := sms.NewFromDriver(driver, sms.FactoryOptions{
		Panel: sms.PanelConfig{
			BaseURL:  strings.TrimSpace(a.config.GetString("sms.base_url")),
			Username: strings.TrimSpace(a.config.GetString("sms.username")),
			Password: a.config.GetString("sms.password"),
			APIKey:   a.config.GetString("sms.api_key"),
			Footer:   a.config.GetString("sms.footer"),
			Timeout:  a.config.GetSecond("sms.timeout_seconds"),
		},
		Logger: slog.Default(),
	})
	must(err, "failed to init sms", "driver", driver)

	a.sms = client
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         a.config.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    a.config.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: a.config.GetArray("messaging.nsq.consumer_lookupd_addrs"),
			ProducerConfig:       a.nsqConfig("messaging.nsq.producer_config"),
			ConsumerConfig:       a.nsqConfig("messaging.nsq.consumer_config"),
		},
		NATS: messaging.NATSConfig{
			URL:     a.config.GetString("messaging.nats.url"),
			Options: a.natsOptions(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers: a.config.GetArray("messaging.kafka.brokers"),
			Dialer: &kafka.Dialer{
				Timeout:   a.config.GetSecond("messaging.kafka.dial_timeout_seconds"),
				DualStack: true,
			},
		},
		PubSub: messaging.PubSubConfig{
			ProjectID: a.config.GetString("messaging.pubsub.project_id"),
		},
	})
	must(err, "failed to init messaging", "driver", driver)

	a.messaging = client
}

// nsqConfig reads an nsq.Config from the config subtree at prefix. Zero
// values fall back to the library defaults.
func (a *App) nsqConfig(prefix string) *nsq.Config {
	cfg := nsq.NewConfig()
	if v := a.config.GetInt(prefix + ".max_in_flight"); v > 0 {
		cfg.MaxInFlight = v
	}
	if v := a.config.GetUint16(prefix + ".max_attempts"); v > 0 {
		cfg.MaxAttempts = v
	}
	if v := a.config.GetSecond(prefix + ".lookupd_poll_interval_seconds"); v > 0 {
		cfg.LookupdPollInterval = v
	}
	if v := a.config.GetSecond(prefix + ".dial_timeout_seconds"); v > 0 {
		cfg.DialTimeout = v
	}
	if v := a.config.GetSecond(prefix + ".read_timeout_seconds"); v > 0 {
		cfg.ReadTimeout = v
	}
	if v := a.config.GetSecond(prefix + ".write_timeout_seconds"); v > 0 {
		cfg.WriteTimeout = v
	}
	if v := a.config.GetSecond(prefix + ".default_requeue_delay_seconds"); v > 0 {
		cfg.DefaultRequeueDelay = v
	}
	if v := a.config.GetSecond(prefix + ".max_requeue_delay_seconds"); v > 0 {
		cfg.MaxRequeueDelay = v
	}
	return cfg
}

func (a *App) natsOptions() []nats.Option {
	return []nats.Option{
		nats.Name(a.config.GetString("messaging.nats.name")),
		nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
		nats.Timeout(a.config.GetSecond("messaging.nats.timeout_seconds")),
		nats.ReconnectWait(a.config.GetSecond("messaging.nats.reconnect_wait_seconds")),
		nats.PingInterval(a.config.GetSecond("messaging.nats.ping_interval_seconds")),
		nats.MaxPingsOutstanding(a.config.GetInt("messaging.nats.max_pings_outstanding")),
		nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
	}
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	withCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           withCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{name: "Instrument", fn: func(ctx context.Context) error { return a.ins.Shutdown(ctx) }},
		{name: "Messaging", fn: func(context.Context) error { return a.messaging.Close() }},
		{name: "SMS", fn: func(context.Context) error { return a.sms.Close() }},
		{name: "Redis", fn: func(context.Context) error { return a.cacheConn.Close() }},
		{name: "Database", fn: func(context.Context) error { a.dbConn.Close(); return nil }},
		{name: "Config", fn: func(context.Context) error { return a.config.Close() }},
	}
}
