// ailab is the command-line front end for the AI Lab portfolio backend:
// hypothesis lifecycle tracking, the portfolio dashboard, and onboarding
// sessions, all backed by a local sqlite database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/k2tech/ailab/internal/debug"
	"github.com/k2tech/ailab/internal/hypothesis"
	"github.com/k2tech/ailab/internal/onboarding"
	"github.com/k2tech/ailab/internal/storage"
	"github.com/k2tech/ailab/internal/storage/sqlite"
	"github.com/k2tech/ailab/internal/telemetry"
)

// Version and Build are overridden at link time.
var (
	Version = "0.3.0"
	Build   = "dev"
)

var (
	cfgFile     string
	dbPath      string
	actorFlag   string
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	store  storage.Storage
	hypSvc *hypothesis.Service
	onbSvc *onboarding.Service

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// noDbCommands don't need a database handle.
var noDbCommands = map[string]bool{
	"help":       true,
	"version":    true,
	"completion": true,
}

var rootCmd = &cobra.Command{
	Use:           "ailab",
	Short:         "ailab - AI hypothesis portfolio tracker",
	Long:          `Track AI hypotheses through a stage-gated lifecycle, from ideation to production, with a portfolio dashboard and guided onboarding sessions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("ailab version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		if err := initConfig(); err != nil {
			return err
		}
		if err := telemetry.Init(rootCtx, "ailab", Version); err != nil {
			return fmt.Errorf("telemetry init: %w", err)
		}

		if noDbCommands[cmd.Name()] {
			return nil
		}

		path := resolveDBPath()
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		s, err := sqlite.New(rootCtx, path)
		if err != nil {
			return fmt.Errorf("failed to open database at %s: %w", path, err)
		}
		store = telemetry.WrapStorage(s)
		hypSvc = hypothesis.NewService(store)
		onbSvc = onboarding.NewService(store)
		debug.Logf("opened database at %s\n", path)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
			store = nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		telemetry.Shutdown(shutdownCtx)
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ailab.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the sqlite database (default: .ailab/ailab.db)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "actor recorded in audit trails")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON instead of formatted text")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress non-essential output")
	rootCmd.Flags().Bool("version", false, "print version and exit")
}

// initConfig wires viper: explicit --config, else ./ailab.yaml, with every
// key overridable through AILAB_* environment variables.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ailab")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ailab"))
		}
	}
	viper.SetEnvPrefix("AILAB")
	viper.AutomaticEnv()
	viper.SetDefault("db", filepath.Join(".ailab", "ailab.db"))
	viper.SetDefault("addr", "127.0.0.1:8675")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func resolveDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return viper.GetString("db")
}

// getActor resolves the audit actor.
// Priority: --actor flag > AILAB_ACTOR env > $USER > "unknown".
func getActor() string {
	if actorFlag != "" {
		return actorFlag
	}
	if a := os.Getenv("AILAB_ACTOR"); a != "" {
		return a
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

func getContext() context.Context {
	if rootCtx != nil {
		return rootCtx
	}
	return context.Background()
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
