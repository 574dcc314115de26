package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"diningroom/internal/config"
	"diningroom/internal/database"
	"diningroom/internal/store"
	"diningroom/internal/store/memory"
	"diningroom/internal/store/mongostore"
)

var rootCmd = &cobra.Command{
	Use:   "diningroom",
	Short: "Front-of-house backend for a restaurant",
	Long: `diningroom serves the table plan, menu, orders, kitchen queue and
revenue statistics of a restaurant over HTTP.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore returns the configured store and a function releasing it.
func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Println("[STORE] [WARN] using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureIndexes(db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println("[STORE] [WARN] disconnect:", err)
		}
	}
	return mongostore.New(db), closeFn, nil
}
