package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	transport "trivia-quiz/internal/transport/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadRuntime(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log, false); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := buildDeps(ctx, cfg, log, roleServer)
	if err != nil {
		return err
	}
	defer d.Close()

	service := app.NewQuizService(d.bank, d.scores, d.sessions,
		app.WithSecondsPerQuestion(cfg.Quiz.SecondsPerQuestion),
		app.WithLogger(log),
	)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           transport.NewRouter(service, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// no WriteTimeout: event streams stay open for a whole quiz
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", finalPort).Info("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		reapIdle(gctx, service, config.TTLDuration(cfg.Quiz.SessionIdleTTL, 15*time.Minute), log)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		// whatever is still running cannot be finished by anyone now
		service.Reap(0)
		return err
	})

	return g.Wait()
}

// reapIdle abandons forgotten sessions until ctx is done.
func reapIdle(ctx context.Context, service *app.QuizService, maxIdle time.Duration, log logrus.FieldLogger) {
	interval := maxIdle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.WithField("maxIdle", maxIdle.String()).Debug("session reaper running")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			service.Reap(maxIdle)
		}
	}
}
