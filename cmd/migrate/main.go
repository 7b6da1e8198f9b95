package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"warehouse-receiving/internal/config"
	"warehouse-receiving/internal/database"
)

func main() {
	seed := flag.Bool("seed", false, "insert the sample products, warehouses and orders after migrating")
	printOnly := flag.Bool("print", false, "print the schema and exit without connecting")
	flag.Parse()

	if *printOnly {
		fmt.Print(database.Schema())
		return
	}

	if err := run(*seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seed bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	if seed {
		if err := database.Seed(ctx, pool, logger); err != nil {
			return err
		}
	}

	return nil
}
