package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	echoapi "github.com/submitly/backend/apps/api/echo"
	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/auth"
	"github.com/submitly/backend/core/contact"
	"github.com/submitly/backend/core/review"
	"github.com/submitly/backend/core/submission"
	emailsvc "github.com/submitly/backend/services/email"
	"github.com/submitly/backend/services/events"
	"github.com/submitly/backend/services/filestore"
	logsvc "github.com/submitly/backend/services/logger"
	"github.com/submitly/backend/services/ratelimit"
	"github.com/submitly/backend/storage/database"
	inmemdb "github.com/submitly/backend/storage/database/inmem"
	sqlxrepos "github.com/submitly/backend/storage/database/sqlx"
)

type repositories struct {
	submissions submission.Repository
	reviews     review.Repository
	close       func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Close() }() // flush pending reports

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)
	defer func() { _ = dbLogger.Close() }()

	ctx := context.Background()

	// set up DB
	repos, err := setUpRepositories(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf)
	}
	notifier := core.NewMailNotifier(mailSvc, conf)

	files, err := setUpFileStore(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	publisher, closePublisher := setUpPublisher(conf)
	defer func() {
		if err = closePublisher(); err != nil {
			logger.Error(fmt.Sprintf("closing event publisher: %v", err), err)
		}
	}()

	limiterStore, err := setUpRateLimitStore(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up rate limiter: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := core.NewValidator()
	submission.InitValidators(validate)

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	if conf.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH is not set: admin login is disabled")
	}

	subSvc := submission.NewService(submission.Deps{
		Repo:      repos.submissions,
		Files:     files,
		Notifier:  notifier,
		Publisher: publisher,
		Validator: validate,
		Logger:    logger,
		Conf:      conf,
	})
	reviewSvc := review.NewService(repos.reviews, subSvc, validate)
	contactSvc := contact.NewService(notifier, validate, logger, conf)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("db_engine").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			Validator:      validate,
			SubmissionSvc:  subSvc,
			ReviewSvc:      reviewSvc,
			ContactSvc:     contactSvc,
			Admin:          auth.NewAdmin(conf, validate),
			RateLimitStore: limiterStore,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepositories(conf *core.Config) (*repositories, error) {
	if conf.Database.Engine == "memory" {
		db := inmemdb.Open()
		return &repositories{
			submissions: inmemdb.NewSubmissionRepository(db),
			reviews:     inmemdb.NewReviewRepository(db),
			close:       func() error { return nil },
		}, nil
	}

	db, err := setUpDB(conf)
	if err != nil {
		return nil, err
	}
	return &repositories{
		submissions: sqlxrepos.NewSubmissionRepository(db),
		reviews:     sqlxrepos.NewReviewRepository(db),
		close:       db.Close,
	}, nil
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func setUpFileStore(ctx context.Context, conf *core.Config) (core.FileStore, error) {
	if conf.Storage.Endpoint == "" {
		return filestore.NewMemoryStore(), nil
	}
	return filestore.NewMinioStore(ctx, conf)
}

func setUpPublisher(conf *core.Config) (core.EventPublisher, func() error) {
	if len(conf.Kafka.Brokers) == 0 {
		return events.NewMemoryPublisher(), func() error { return nil }
	}
	p := events.NewKafkaPublisher(conf)
	return p, p.Close
}

func setUpRateLimitStore(ctx context.Context, conf *core.Config) (middleware.RateLimiterStore, error) {
	if conf.Redis.Addr == "" {
		return ratelimit.NewStore(conf, nil), nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: conf.Redis.Addr, Password: conf.Redis.Password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return ratelimit.NewStore(conf, rdb), nil
}
