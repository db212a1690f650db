package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snapdrop/cli/internal/api"
	"github.com/snapdrop/cli/internal/logging"
	"github.com/snapdrop/cli/pkg"
	"github.com/snapdrop/cli/pkg/device"
	"github.com/snapdrop/cli/pkg/stats"
	"github.com/snapdrop/cli/pkg/uploader"
)

// appContext holds the wired components shared by all commands.
type appContext struct {
	store        *pkg.Store
	client       *api.Client
	device       *device.Provider
	stats        *stats.Reader
	orchestrator *uploader.Orchestrator
	log          logging.Logger
}

var app *appContext

var rootCmd = &cobra.Command{
	Use:   "snapdrop",
	Short: "Upload and search images on a snapdrop service",
	Long: `snapdrop is a client for an image upload service with duplicate
detection, per-device upload quotas and full-text search.

Quota is attributed by a device fingerprint derived from local machine
characteristics; no account is needed.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initApp,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil && app.store != nil {
			_ = app.store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("endpoint", "http://localhost:8000", "Base URL of the image service")
	rootCmd.PersistentFlags().String("db", "", "Path to the local state database (default: ~/.snapdrop/snapdrop.db)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetEnvPrefix("SNAPDROP")
	viper.AutomaticEnv()
}

// initApp wires the shared components. A broken local database is not
// fatal: the client still works, it just derives an unpersisted
// fingerprint each run.
func initApp(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	log := logging.NewDefault(level)

	dbPath := viper.GetString("db")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".snapdrop", "snapdrop.db")
	}

	var store *pkg.Store
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		log.Warn("local state unavailable", "err", err)
	} else if s, err := pkg.OpenStore(dbPath); err != nil {
		log.Warn("local state unavailable", "err", err)
	} else {
		store = s
	}

	client := api.NewClient(viper.GetString("endpoint"))

	var configStore device.ConfigStore
	if store != nil {
		configStore = store
	}
	deviceProvider := device.NewProvider(configStore, device.WithLogger(log))

	statsReader := stats.NewReader(client, deviceProvider, log)

	var journal uploader.Journal
	if store != nil {
		journal = store
	}
	orchestrator := uploader.NewOrchestrator(uploader.Config{
		Client:  client,
		Device:  deviceProvider,
		Stats:   statsReader,
		Journal: journal,
		Logger:  log,
	})

	app = &appContext{
		store:        store,
		client:       client,
		device:       deviceProvider,
		stats:        statsReader,
		orchestrator: orchestrator,
		log:          log,
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", api.UserMessage(err))
		os.Exit(1)
	}
}
