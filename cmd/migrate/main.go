// Package main applies or reverts the embedded schema migrations.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"

	"github.com/pagescribe/pagescribe/migrations"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		direction   = flag.String("direction", "up", "Migration direction: up or down")
		steps       = flag.Int("steps", 1, "Number of migrations to revert when direction=down (0 = all)")
		timeout     = flag.Duration("timeout", time.Minute, "Overall timeout")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *databaseURL, *direction, *steps); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, databaseURL, direction string, steps int) error {
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	connector, err := pq.NewConnector(databaseURL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	db := sql.OpenDB(connector)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect database: %w", err)
	}

	m, err := migrations.New(db)
	if err != nil {
		db.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()

	// golang-migrate has no context support; GracefulStop aborts between steps.
	stop := context.AfterFunc(ctx, func() { m.GracefulStop <- true })
	defer stop()

	var changed bool
	switch direction {
	case "up":
		changed, err = migrations.Up(m)
	case "down":
		changed, err = migrations.Down(m, steps)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}

	version, dirty, err := migrations.Version(m)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("no changes")
	}
	fmt.Printf("version %06d dirty=%t\n", version, dirty)
	return nil
}
