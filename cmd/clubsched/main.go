package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"clubsched/internal/clock"
	"clubsched/internal/config"
	"clubsched/internal/dispatch"
	"clubsched/internal/http-server/handlers/admin/broadcast"
	"clubsched/internal/http-server/handlers/admin/closePoll"
	"clubsched/internal/http-server/handlers/cron/sweepReminders"
	"clubsched/internal/http-server/handlers/webhook/emailReply"
	"clubsched/internal/http-server/handlers/webhook/smsReply"
	"clubsched/internal/http-server/middleware/adminauth"
	"clubsched/internal/http-server/middleware/mwlogger"
	"clubsched/internal/lib/logger/handlers/slogpretty"
	"clubsched/internal/lib/logger/sl"
	"clubsched/internal/poll"
	"clubsched/internal/ratelimit"
	"clubsched/internal/reply"
	"clubsched/internal/rsvp"
	"clubsched/internal/schedule"
	"clubsched/internal/sender"
	"clubsched/internal/storage/postgres"
	"clubsched/internal/webhook"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting club scheduler", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.InitDB(&cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	clk, err := clock.New(cfg.Club.Timezone, cfg.Club.DefaultEventTime)
	if err != nil {
		log.Error("failed to load club timezone", sl.Err(err))
		os.Exit(1)
	}

	offsets, err := schedule.ParseOffsets(cfg.Club.ReminderOffsets)
	if err != nil {
		log.Error("failed to parse reminder offsets", sl.Err(err))
		os.Exit(1)
	}

	verifier, err := webhook.NewEmailVerifier(cfg.Resend.WebhookSecret)
	if err != nil {
		log.Error("failed to init email webhook verifier", sl.Err(err))
		os.Exit(1)
	}

	reconciler := rsvp.New(storage)
	limiter := ratelimit.New(storage, cfg.Club.SmsRateLimit, cfg.Club.SmsRateWindow)
	parser := reply.NewCalendarParser(cfg.Club.CalendarDomain)

	dispatcher := dispatch.New(
		log,
		storage,
		sender.NewTwilioSender(cfg.Twilio),
		sender.NewResendMailer(cfg.Resend),
		clk,
		cfg.Club.CalendarDomain,
		offsets,
		cfg.Club.ReminderWindow,
	)

	polls := poll.New(log, storage, clk, dispatcher)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Post("/webhooks/sms", smsReply.New(log, cfg, storage, reconciler, limiter, time.Now))
	router.Post("/webhooks/email", emailReply.New(log, verifier, parser, storage, reconciler))
	router.Post("/cron/reminders", sweepReminders.New(log, dispatcher))

	router.Group(func(r chi.Router) {
		r.Use(adminauth.New(log, cfg.Admin.Token))

		r.Post("/admin/polls/{id}/close", closePoll.New(log, polls))
		r.Post("/admin/events/{id}/broadcast", broadcast.New(log, dispatcher))
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	sweeper := cron.New()
	if _, err = sweeper.AddFunc(cfg.Club.SweepSchedule, func() {
		res := dispatcher.Sweep(time.Now())
		log.Info("reminder sweep finished",
			slog.Int("due", res.Due),
			slog.Int("sent", res.Sent),
			slog.Int("failed", res.Failed),
		)
	}); err != nil {
		log.Error("failed to schedule reminder sweep", sl.Err(err))
		os.Exit(1)
	}
	sweeper.Start()

	go func() {
		if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	<-sweeper.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
