package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/carreg/internal/config"
	"github.com/zjrosen/carreg/internal/console"
	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/registry"
	"github.com/zjrosen/carreg/internal/store"
)

// localConfigPath is checked before the user config directory.
const localConfigPath = ".carreg/config.yaml"

var version = "dev"

// app carries per-invocation state shared by the command tree.
type app struct {
	v          *viper.Viper
	cfgFile    string
	debug      bool
	cfg        config.Config
	logCleanup func()
}

// NewRootCmd builds the carreg command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "carreg",
		Short: "An interactive vehicle registry",
		Long: `carreg keeps vehicle records (registration, make, model, year) in a
local database and drives them from a numbered console menu.

Run without a subcommand to start the interactive session.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.teardown() },
		RunE:              a.runSession,
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./.carreg/config.yaml or ~/.config/carreg/config.yaml)")
	rootCmd.PersistentFlags().StringP("data", "d", "",
		"path to the vehicle database (default: car_data.json)")
	rootCmd.PersistentFlags().String("backend", "",
		"storage backend: json, sqlite, or memory")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false,
		"write debug logs (also CARREG_DEBUG=1)")

	_ = a.v.BindPFlag("data_file", rootCmd.PersistentFlags().Lookup("data"))
	_ = a.v.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))

	rootCmd.AddCommand(
		newListCmd(a),
		newFindCmd(a),
		newExportCmd(a),
		newInitConfigCmd(a),
	)
	return rootCmd
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	if err := a.loadConfig(); err != nil {
		return err
	}
	return a.initLogging()
}

func (a *app) loadConfig() error {
	defaults := config.Defaults()
	a.v.SetDefault("data_file", defaults.DataFile)
	a.v.SetDefault("backend", defaults.Backend)
	a.v.SetDefault("sentinel", defaults.Sentinel)
	a.v.SetDefault("log.enabled", defaults.Log.Enabled)
	a.v.SetDefault("log.path", defaults.Log.Path)
	a.v.SetDefault("log.level", defaults.Log.Level)

	a.v.SetEnvPrefix("CARREG")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		// Config lookup order:
		// 1. .carreg/config.yaml (current directory)
		// 2. ~/.config/carreg/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			a.v.SetConfigFile(localConfigPath)
		} else {
			if home, err := os.UserHomeDir(); err == nil {
				a.v.AddConfigPath(filepath.Join(home, ".config", "carreg"))
			}
			a.v.SetConfigName("config")
			a.v.SetConfigType("yaml")
		}
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		// No config file anywhere: defaults, env, and flags still apply.
	}

	cfg := config.Defaults()
	if err := a.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) initLogging() error {
	if os.Getenv("CARREG_DEBUG") == "" && !a.debug && !a.cfg.Log.Enabled {
		return nil
	}

	logPath := os.Getenv("CARREG_LOG")
	if logPath == "" {
		logPath = a.cfg.Log.Path
	}
	if logPath == "" {
		logPath = config.DefaultLogPath
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	a.logCleanup = cleanup
	log.SetMinLevel(log.ParseLevel(a.cfg.Log.Level))
	log.Info(log.CatConfig, "carreg starting", "version", version,
		"config", a.v.ConfigFileUsed(), "backend", a.cfg.Backend, "data", a.cfg.ResolvedDataFile())
	return nil
}

func (a *app) teardown() {
	if a.logCleanup != nil {
		a.logCleanup()
		a.logCleanup = nil
	}
}

func (a *app) openStore() (store.Store, error) {
	st, err := store.Open(a.cfg.Backend, a.cfg.ResolvedDataFile())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

func (a *app) runSession(cmd *cobra.Command, _ []string) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	session := console.NewSession(cmd.InOrStdin(), cmd.OutOrStdout(), registry.New(), st,
		console.WithSentinel(a.cfg.ResolvedSentinel()))
	return session.Run(cmd.Context())
}

// loadRegistry reads the store for the non-interactive commands. Missing
// and corrupted databases read as empty, with a note on errOut.
func loadRegistry(ctx context.Context, st store.Store, errOut io.Writer) (*registry.Registry, error) {
	cars, err := st.Load(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotExist):
		_, _ = fmt.Fprintf(errOut, "No existing database found at %s.\n", st.Location())
	case errors.Is(err, store.ErrCorrupt):
		_, _ = fmt.Fprintf(errOut, "Warning: Database file %s is corrupted. Treating it as empty.\n", st.Location())
	default:
		return nil, fmt.Errorf("loading database: %w", err)
	}
	return registry.FromMap(cars), nil
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
