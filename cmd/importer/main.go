package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/HuyGoodBoy/yogalanding-sub000/internal/backend"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/config"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/importer"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/repository/state"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/admin"
	"github.com/HuyGoodBoy/yogalanding-sub000/internal/service/session"
)

const importerClientID = "importer"

func main() {
	var (
		filePath string
		email    string
	)
	flag.StringVar(&filePath, "file", "", "Path to a recharge code CSV (code,amount_vnd,expires_at)")
	flag.StringVar(&email, "email", os.Getenv("ADMIN_EMAIL"), "Admin account email (default $ADMIN_EMAIL)")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if filePath == "" || email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: importer -file codes.csv -email admin@example.com (password from $ADMIN_PASSWORD)")
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[importer] ", log.LstdFlags|log.LUTC)
	if err := run(context.Background(), logger, filePath, email, password); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, filePath, email, password string) error {
	cfg := config.FromEnv()
	api := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		AnonKey: cfg.BackendAnonKey,
		Timeout: cfg.BackendTimeout,
	}, logger)
	sessions := session.New(api, state.NewMemory(), logger)

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if _, err := sessions.SignIn(ctx, importerClientID, email, password); err != nil {
		return fmt.Errorf("sign in as %s: %w", email, err)
	}
	defer func() {
		if err := sessions.SignOut(ctx, importerClientID); err != nil {
			logger.Printf("sign out: %v", err)
		}
	}()

	imp := importer.NewCSVImporter(f, admin.New(api, sessions, logger), importerClientID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed after %d code(s): %w", count, err)
	}

	fmt.Printf("Imported %d recharge codes in %s\n", count, time.Since(start).Truncate(time.Millisecond))
	return nil
}
