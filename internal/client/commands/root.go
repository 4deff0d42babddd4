package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tranphatthinh/gramctl/internal/client"
	"github.com/tranphatthinh/gramctl/internal/client/config"
	"github.com/tranphatthinh/gramctl/internal/client/errors"
	"github.com/tranphatthinh/gramctl/internal/client/flow"
	"github.com/tranphatthinh/gramctl/internal/client/session"
	"github.com/tranphatthinh/gramctl/internal/logging"
)

var (
	// Global flags
	flagURL     string
	flagToken   string
	flagJSON    bool
	flagVerbose bool
	flagOpen    bool
	flagYes     bool
)

// v carries settings from flags, GRAMCTL_* env vars and ~/.config/gramctl/config.yaml
var v = config.NewViper()

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gramctl",
	Short: "Grammar-check service client",
	Long: `gramctl signs in to the grammar-check service, keeps the returned credential
and uses it to check or improve text.

The credential is stored once, under a single key, and every authenticated
command first checks that it is present (and renews it when it has expired).`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagURL, "url", "", "Server URL (or use GRAMCTL_URL env var)")
	flags.StringVar(&flagToken, "token", "", "Access token to use instead of the stored one (or use GRAMCTL_ACCESS_TOKEN env var)")
	flags.BoolVar(&flagJSON, "json", false, "Output in JSON format")
	flags.BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	flags.BoolVar(&flagOpen, "open", false, "Open the next page in a browser")
	flags.BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
	flags.Duration("timeout", 30*time.Second, "HTTP request timeout")
	flags.String("store", "auto", "Credential store: auto, file, keyring or memory")
	flags.String("store-path", "", "Credentials file location (default ~/.config/gramctl/credentials.yaml)")
	flags.Duration("redirect-delay", 2*time.Second, "Pause before moving on after registration")

	_ = v.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = v.BindPFlag("store", flags.Lookup("store"))
	_ = v.BindPFlag("store_path", flags.Lookup("store-path"))
	_ = v.BindPFlag("redirect_delay", flags.Lookup("redirect-delay"))
}

// app is what every command needs, resolved once per invocation
type app struct {
	settings *config.Settings
	logger   *slog.Logger
	store    session.Store
	baseURL  string
}

// newApp resolves settings, logger, credential store and server URL.
// serverArg, when set, overrides every other URL source.
func newApp(vp *viper.Viper, serverArg string) (*app, error) {
	settings, err := config.LoadWithViper(vp)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		settings.LogLevel = "debug"
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(settings.LogLevel, settings.LogFormat, os.Stderr)

	store, err := session.New(settings.Store, settings.StorePath)
	if err != nil {
		return nil, err
	}

	urlSource := serverArg
	if urlSource == "" {
		urlSource = flagURL
	}
	if urlSource == "" {
		// GRAMCTL_URL or config file
		urlSource = settings.URL
	}
	baseURL := config.ResolveURL(urlSource, session.StoredURL(store))

	logger.Debug("Client configured",
		"server", baseURL,
		"store", settings.Store,
		"timeout", settings.Timeout)

	return &app{
		settings: settings,
		logger:   logger,
		store:    store,
		baseURL:  baseURL,
	}, nil
}

// mustApp is newApp for cobra Run functions
func mustApp(serverArg string) *app {
	a, err := newApp(v, serverArg)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}
	return a
}

// api returns a client for the resolved server carrying token
func (a *app) api(token string) *client.Client {
	return client.NewClient(a.baseURL, token, a.settings.Timeout, a.logger)
}

// handler returns the login/registration/guard handler
func (a *app) handler() *flow.Handler {
	delay := a.settings.RedirectDelay
	if delay == 0 {
		delay = -1
	}
	return flow.NewHandler(a.api(""), a.store, newPresenter(flagJSON, flagOpen), flow.Options{
		BaseURL:       a.baseURL,
		RedirectDelay: delay,
		Logger:        a.logger,
	})
}
