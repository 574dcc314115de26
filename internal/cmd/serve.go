package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"diningroom/internal/config"
	"diningroom/internal/models"
	"diningroom/internal/server"
	"diningroom/internal/store"
)

var (
	adminEmail    string
	adminPassword string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API on PORT using the store selected by STORE.

With --admin-email and --admin-password an admin account is created on
start if that email is not registered yet.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&adminEmail, "admin-email", "", "Bootstrap admin email")
	serveCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Bootstrap admin password")
}

func runServe(cmd *cobra.Command, args []string) error {
	config.Load()
	cfg := config.AppEnv
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	st, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	if adminEmail != "" || adminPassword != "" {
		_, err := createUser(context.Background(), st, userInput{
			Email:    adminEmail,
			Name:     "Administrator",
			Role:     models.RoleAdmin,
			Password: adminPassword,
		})
		switch {
		case errors.Is(err, store.ErrDuplicate):
			log.Printf("[USER] [INFO] admin %s already exists", adminEmail)
		case err != nil:
			return err
		}
	}

	srv := server.NewServer(st, server.Options{
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		RequestTimeout: cfg.RequestTimeout,
	})

	addr := ":" + cfg.Port
	log.Printf("[SERVER] [INFO] listening on %s (store=%s)", addr, cfg.Store)
	if err := srv.Start(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
