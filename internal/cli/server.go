package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tranphatthinh/gramctl/internal/config"
	"github.com/tranphatthinh/gramctl/internal/logging"
	"github.com/tranphatthinh/gramctl/internal/server"
	"github.com/tranphatthinh/gramctl/internal/storage"
)

var envFile string

// v is bound to the serve flags; GRAM_STUB_* env vars fill the rest
var v = config.NewViper()

// ServerCmd represents the serve command
var ServerCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stand-in HTTP server",
	Long: `Start an HTTP server answering the endpoints the client talks to: account
registration, login, token refresh, logout, whoami and the two text endpoints.

Text is "reviewed" by a deterministic echo so clients can be developed and
tested offline. Accounts live in memory, SQLite or PostgreSQL.`,
	RunE: runServer,
}

func init() {
	flags := ServerCmd.Flags()
	flags.StringVar(&envFile, "env-file", ".env", "Load environment variables from this file when it exists")
	flags.Int("port", 5000, "Port to listen on")
	flags.String("host", "127.0.0.1", "Address to bind")
	flags.String("storage-uri", "memory://", "User storage: memory://, sqlite://<path> or postgres://<dsn>")
	flags.String("users-file", "", "Seed users from this YAML file")
	flags.String("jwt-secret", "", "HS256 signing secret for access tokens")
	flags.Duration("access-token-ttl", 15*time.Minute, "Access token lifetime")
	flags.Int("rate-limit", 100, "Requests per minute per client IP (0 disables)")
	flags.Bool("trust-proxy", false, "Rate limit on X-Forwarded-For / X-Real-IP (only behind a proxy that sets them)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "json", "Log format: json or text")

	_ = v.BindPFlag("server.port", flags.Lookup("port"))
	_ = v.BindPFlag("server.host", flags.Lookup("host"))
	_ = v.BindPFlag("storage.uri", flags.Lookup("storage-uri"))
	_ = v.BindPFlag("storage.users_file", flags.Lookup("users-file"))
	_ = v.BindPFlag("auth.jwt_secret", flags.Lookup("jwt-secret"))
	_ = v.BindPFlag("auth.access_token_ttl", flags.Lookup("access-token-ttl"))
	_ = v.BindPFlag("rate_limit.requests_per_minute", flags.Lookup("rate-limit"))
	_ = v.BindPFlag("rate_limit.trust_proxy", flags.Lookup("trust-proxy"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, os.Stdout)

	uri, err := cfg.GetParsedStorageURI()
	if err != nil {
		return err
	}

	logger.Info("Server starting",
		"version", version,
		"port", cfg.Server.Port,
		"storage_uri", uri.String(),
		"users_file", cfg.Storage.UsersFile,
		"jwt_secret", cfg.MaskSecret())

	store, err := storage.NewStorage(uri, logger)
	if err != nil {
		logger.Error("Failed to initialize storage",
			"error", err,
			"storage_uri", uri.String())
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if cfg.Storage.UsersFile != "" {
		if _, err := storage.Seed(cmd.Context(), store, cfg.Storage.UsersFile, logger); err != nil {
			_ = store.Close()
			return fmt.Errorf("failed to seed users: %w", err)
		}
	}

	srv := server.NewServer(cfg, logger, store)

	logger.Info("Server ready to accept connections",
		"address", "http://"+srv.Addr())

	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}

	return nil
}

// loadConfig loads and validates the configuration from vp
func loadConfig(vp *viper.Viper) (*config.Config, error) {
	cfg, err := config.LoadWithViper(vp)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads path into the environment. A missing file is not an error.
// Variables already set win over the file.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
