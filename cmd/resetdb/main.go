package main

import (
	"codekids"
	"codekids/internal/api/models"
	"codekids/pkg"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// resetdb repairs a CodeKids database in place: it restores the stock
// challenge artwork and can wipe learner progress.
func main() {
	envfile := flag.String("env", ".env", "env file holding the DB_* settings")
	resetProgress := flag.Bool("progress", false, "delete every learner's challenge progress")
	flag.Parse()

	logger := codekids.NewLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := run(ctx, logger, *envfile, *resetProgress)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Database reset failed")
	}
	logger.Info().Msg("Database reset done")
}

// run does the whole reset inside one transaction. Every deferred cleanup has
// run by the time it returns.
func run(ctx context.Context, logger zerolog.Logger, envfile string, resetProgress bool) error {
	if err := godotenv.Load(envfile); err != nil {
		return fmt.Errorf("load env file %s: %w", envfile, err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		os.Getenv("DB_HOSTNAME"), os.Getenv("DB_USERNAME"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), os.Getenv("DB_PORT"), codekids.GetEnv("DB_SSL_MODE", "disable"))
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	columns, err := pkg.FindPublicColumns(ctx, db)
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}
	if missing := pkg.MissingTables(columns, "challenge", "challenge_progress", "workspace"); len(missing) > 0 {
		return fmt.Errorf("schema is not migrated, start the API in dev mode first (missing %s)", strings.Join(missing, ", "))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, challengeType := range models.ChallengeTypes() {
		res, err := tx.ExecContext(ctx, `UPDATE challenge SET image_url = $1 WHERE type = $2`, challengeType.ImageURL(), string(challengeType))
		if err != nil {
			return fmt.Errorf("reset %s challenge images: %w", challengeType, err)
		}
		n, _ := res.RowsAffected()
		logger.Info().Str("type", string(challengeType)).Int64("rows", n).Msg("Challenge images reset")
	}

	if resetProgress {
		res, err := tx.ExecContext(ctx, `DELETE FROM challenge_progress`)
		if err != nil {
			return fmt.Errorf("delete progress: %w", err)
		}
		n, _ := res.RowsAffected()
		logger.Info().Int64("rows", n).Msg("Learner progress deleted")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
