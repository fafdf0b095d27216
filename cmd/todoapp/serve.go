package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/todoapp/todoapp/internal/auth"
	"github.com/todoapp/todoapp/internal/config"
	"github.com/todoapp/todoapp/internal/server"
	"github.com/todoapp/todoapp/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	Long: `Run the todo REST API in the foreground until interrupted.

The database, listen address and JWT secret come from todoapp.toml,
~/.todoapp/config.toml and the TODOAPP_* environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		if err := runServe(addr); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, "+server.DefaultAddress+")")
}

func runServe(addr string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.ServerAddr()
	}

	tokens, err := newTokenIssuer(cfg)
	if err != nil {
		return err
	}

	manager, err := store.Open(cfg.DBPath, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer manager.Close()

	logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("db", manager.Path()),
		zap.String("config", cfg.ProjectFile))

	return server.New(addr, manager, tokens, logger).ListenAndServe()
}

// newTokenIssuer builds the JWT issuer from the configured secret. Without
// one, a random secret is used and tokens die with the process.
func newTokenIssuer(cfg *config.Config) (*auth.TokenIssuer, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		buf := make([]byte, auth.MinSecretBytes)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		secret = base64.StdEncoding.EncodeToString(buf)
		logger.Warn("no jwt secret configured, using an ephemeral one",
			zap.String("env", config.EnvJWTSecret))
	}
	return auth.NewTokenIssuer(secret, cfg.JWTExpiration)
}
