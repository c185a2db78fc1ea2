package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/digkill/TGCreditBot/internal/admin"
	"github.com/digkill/TGCreditBot/internal/config"
	"github.com/digkill/TGCreditBot/internal/database"
	"github.com/digkill/TGCreditBot/internal/openai"
	"github.com/digkill/TGCreditBot/internal/repository"
	"github.com/digkill/TGCreditBot/internal/service"
	"github.com/digkill/TGCreditBot/internal/storage"
	"github.com/digkill/TGCreditBot/internal/telegram"
	"github.com/digkill/TGCreditBot/internal/webhook"
	"github.com/digkill/TGCreditBot/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Apply migrations and run the webhook and admin servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logr := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("database connect: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("database migrate: %w", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("telegram bot: %w", err)
	}
	logr.Info("telegram bot authorized", "username", botAPI.Self.UserName)

	if cfg.WebhookURL != "" {
		if err := registerWebhook(botAPI, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return err
		}
		logr.Info("webhook registered", "url", cfg.WebhookURL)
	}

	bot := telegram.NewBot(botAPI, logr)
	aiClient := openai.NewClient(cfg, logr)

	userRepo := repository.NewUserRepository(db)
	usageRepo := repository.NewUsageRepository(db)

	var archiver service.ImageArchiver
	if cfg.ArchiveEnabled() {
		s3Archiver, err := storage.NewArchiver(cfg)
		if err != nil {
			return fmt.Errorf("storage archiver: %w", err)
		}
		archiver = s3Archiver
	}

	userService := service.NewUserService(userRepo, cfg.StartingCredit)
	meteringService := service.NewMeteringService(logr, userRepo, usageRepo, archiver)
	dispatcher := service.NewDispatcher(logr, userService, meteringService, aiClient, bot, cfg.SystemPrompt)

	g, gctx := errgroup.WithContext(ctx)

	webhookServer := webhook.NewServer(cfg.ListenAddr, cfg.WebhookSecret, logr, dispatcher, bot)
	g.Go(func() error {
		return webhookServer.Run(gctx)
	})

	if cfg.AdminEnabled() {
		adminServer := admin.NewServer(cfg.AdminListenAddr, cfg.AdminUsername, cfg.AdminPassword, logr, userService, usageRepo, bot)
		g.Go(func() error {
			return adminServer.Run(gctx)
		})
	} else {
		logr.Info("admin panel disabled, ADMIN_PASSWORD is empty")
	}

	if err := g.Wait(); err != nil {
		logr.Error("server stopped", "err", err)
		return err
	}
	logr.Info("shutdown complete")
	return nil
}
