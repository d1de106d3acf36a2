package cli

import (
	"context"
	"fmt"

	"trivia-quiz/internal/config"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/file"
	"trivia-quiz/internal/infra/memory"
	pgstore "trivia-quiz/internal/infra/postgres"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			return runMigrationsWithConfig(cmd.Context(), cfg, log, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the question bank (quiz.bank_file or built-in) into postgres")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, log logrus.FieldLogger, seed bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	db := pgstore.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	applied, err := pgstore.Migrate(ctx, db)
	if err != nil {
		return err
	}
	log.WithField("applied", applied).Info("migrations applied")

	if !seed {
		return nil
	}
	categories, err := seedSource(cfg)
	if err != nil {
		return err
	}
	n, err := pgstore.SeedCategories(ctx, db, categories)
	if err != nil {
		return err
	}
	log.WithField("categories", n).Info("question bank seeded")
	return nil
}

func seedSource(cfg config.Config) (map[string][]domain.Question, error) {
	if cfg.Quiz.BankFile != "" {
		return file.Categories(cfg.Quiz.BankFile)
	}
	return memory.DefaultQuestions(), nil
}
