package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"

	"github.com/potatophant/magnifier/internal/auth"
	"github.com/potatophant/magnifier/internal/config"
	"github.com/potatophant/magnifier/internal/logging"
	"github.com/potatophant/magnifier/internal/repository"
	"github.com/potatophant/magnifier/internal/scratch"
	"github.com/potatophant/magnifier/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	zl, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zl.Sync()

	logger := logging.NewZapLogger(zl)

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos := repository.NewManager(db)
	repos.MustValidate()

	if err := repos.Init(ctx); err != nil {
		return err
	}

	source := scratch.New(scratch.Config{
		URL:     cfg.CommentsURL,
		Timeout: cfg.FetchTimeout,
		Logger:  logger.Named("scratch"),
	})

	tokens := auth.NewTokenService(
		[]byte(cfg.SigningKey),
		cfg.TokenExpirationHours,
		cfg.TokenIssuer,
		cfg.TokenAudience,
		logger.Named("tokens"),
	)

	codes := auth.NewCodeGenerator(
		repos.AuthCodes(),
		auth.WithCodeLength(cfg.CodeLength),
		auth.WithCodeLogger(logger.Named("codes")),
	)

	verifier := auth.NewVerifier(repos.AuthCodes(), repos.Users(), source, tokens, auth.VerifierConfig{
		PrivilegedUsername: cfg.PrivilegedUsername,
		BannedUsernames:    cfg.BannedUsernames,
		Logger:             logger.Named("verifier"),
	})

	srv := server.New(cfg, codes, verifier, tokens, repos.Users(),
		server.WithLogger(logger.Named("http")),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.HTTPAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
