package main

import (
	"context"
	"log/slog"
	"syscall"

	"github.com/go-playground/validator/v10"
	evbus "github.com/vardius/message-bus"

	"github.com/prepcheck/prepcheck/internal"
	"github.com/prepcheck/prepcheck/internal/adapters"
	"github.com/prepcheck/prepcheck/internal/app"
	"github.com/prepcheck/prepcheck/internal/app/api/core"
	handlersV0 "github.com/prepcheck/prepcheck/internal/app/api/v0/handlers"
	"github.com/prepcheck/prepcheck/internal/app/auth"
	"github.com/prepcheck/prepcheck/internal/app/notifications"
	"github.com/prepcheck/prepcheck/internal/app/quiz"
	"github.com/prepcheck/prepcheck/internal/app/session"
	"github.com/prepcheck/prepcheck/internal/app/users"
	"github.com/prepcheck/prepcheck/internal/config"
)

func main() {
	ctx := internal.SignalAwareContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)

	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogJson)

	slog.Info("starting PrepCheck...", "version", internal.Version)

	rawDb, err := adapters.NewDatabase(cfg.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewSqlRepository(rawDb)
	internal.AssertNoError(err)

	mailer := adapters.NewSmtpMailRepo(cfg.Mail)

	queueSize := 100
	eventBus := evbus.New(queueSize)

	userManager, err := users.NewUserManager(cfg, eventBus, database, database)
	internal.AssertNoError(err)

	authenticator := auth.NewAuthenticator(cfg, eventBus, userManager)

	quizManager, err := quiz.NewQuizManager(cfg, eventBus, database, database, database)
	internal.AssertNoError(err)

	notificationManager, err := notifications.NewNotificationManager(cfg, eventBus, database, database, mailer)
	internal.AssertNoError(err)

	var metricsServer *adapters.MetricsServer
	var metrics app.Metrics
	if cfg.Statistics.CollectMetrics {
		metricsServer = adapters.NewMetricsServer(cfg, database)
		metrics = metricsServer
	}

	backend, err := app.New(cfg, eventBus, authenticator, userManager, quizManager, notificationManager,
		database, metrics)
	internal.AssertNoError(err)

	err = backend.Startup(ctx)
	internal.AssertNoError(err)

	validate := validator.New()

	sessionWrapper := handlersV0.NewSessionWrapper(cfg)
	sessionStore := session.NewScsStore(sessionWrapper.SessionManager)

	tokenAuth := handlersV0.NewAuthenticationHandler(authenticator)

	apiFrontend := handlersV0.NewRestApi(
		sessionWrapper,
		handlersV0.NewAuthEndpoint(backend, tokenAuth, validate),
		handlersV0.NewGuardEndpoint(backend, sessionStore, validate),
		handlersV0.NewUserEndpoint(backend, tokenAuth, validate),
		handlersV0.NewSubjectEndpoint(backend, tokenAuth, validate),
		handlersV0.NewQuestionEndpoint(backend, tokenAuth, validate),
		handlersV0.NewTestEndpoint(backend, tokenAuth, validate),
		handlersV0.NewNotificationEndpoint(backend, tokenAuth, validate),
		handlersV0.NewStatisticsEndpoint(backend, tokenAuth),
	)

	webSrv, err := core.NewServer(cfg, apiFrontend)
	internal.AssertNoError(err)

	if metricsServer != nil {
		go metricsServer.Run(ctx)
	}
	go webSrv.Run(ctx, cfg.Web.ListeningAddress)

	// wait until the context gets cancelled
	<-ctx.Done()

	slog.Info("stopped PrepCheck")
}
