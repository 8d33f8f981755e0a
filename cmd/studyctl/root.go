package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xaenox/study-bot/internal/notebook"
	"github.com/xaenox/study-bot/internal/storage"
	"github.com/xaenox/study-bot/pkg/config"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	logger = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studyctl",
	Short: "Maintenance tool for the study notebook",
	Long: `studyctl works on the same storage as the bot: list and check in notes,
and export or import the whole notebook as YAML or JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func openStorage() (storage.Storage, *config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.Database.UseInMemory {
		logger.Warn("Config uses in-memory storage; studyctl will see an empty notebook")
	}

	store, err := storage.Open(cfg.Database.UseInMemory, storage.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func openNotebook(ctx context.Context) (*notebook.Notebook, storage.Storage, error) {
	store, cfg, err := openStorage()
	if err != nil {
		return nil, nil, err
	}

	nb := notebook.New(store,
		notebook.WithLogger(logger),
		notebook.WithCooldown(cfg.Study.CheckInCooldown),
		notebook.WithDefaultTagColor(cfg.Study.DefaultTagColor),
	)
	if err := nb.Load(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return nb, store, nil
}
