package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/xaenox/study-bot/internal/bot"
	"github.com/xaenox/study-bot/internal/notebook"
	"github.com/xaenox/study-bot/internal/storage"
	"github.com/xaenox/study-bot/internal/translator"
	"github.com/xaenox/study-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}
	if cfg.Log.Development {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config", zap.Error(err), zap.String("path", *configPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	store, err := storage.Open(cfg.Database.UseInMemory, storage.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer store.Close()

	nb := notebook.New(store,
		notebook.WithLogger(logger.Named("notebook")),
		notebook.WithCooldown(cfg.Study.CheckInCooldown),
		notebook.WithDefaultTagColor(cfg.Study.DefaultTagColor),
	)
	if err := nb.Load(ctx); err != nil {
		logger.Fatal("Failed to load notebook", zap.Error(err))
	}

	// Initialize translator; without an API key /translate reports it is not configured
	var dispatcher *translator.Dispatcher
	if cfg.OpenAI.APIKey != "" {
		var tr translator.Translator
		if cfg.OpenAI.BaseURL != "" {
			tr = translator.NewGPTTranslatorWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL,
				cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger.Named("translator"))
		} else {
			tr = translator.NewGPTTranslator(cfg.OpenAI.APIKey,
				cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature, logger.Named("translator"))
		}
		dispatcher = translator.NewDispatcher(tr, cfg.Translator.MaxInFlight, cfg.Translator.Timeout, logger.Named("translator"))
		defer dispatcher.Wait()
	} else {
		logger.Warn("No OpenAI API key configured, translations are disabled")
	}

	// Initialize bot
	b, err := bot.New(cfg.Telegram.Token, nb, dispatcher, bot.Options{
		TargetLanguage: cfg.Translator.TargetLanguage,
		AllowedUsers:   cfg.Telegram.AllowedUsers,
	}, logger.Named("bot"))
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// Start the bot
	if err := b.Start(ctx); err != nil {
		logger.Error("Bot error", zap.Error(err))
	}
	logger.Info("Bot stopped")
}
