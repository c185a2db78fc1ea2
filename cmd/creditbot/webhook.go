package main

import (
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/digkill/TGCreditBot/internal/config"
)

func webhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}
	cmd.AddCommand(webhookSetCmd())
	cmd.AddCommand(webhookDeleteCmd())
	return cmd
}

func webhookSetCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Point Telegram at this bot's webhook URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, api, err := botFromConfig()
			if err != nil {
				return err
			}
			if url == "" {
				url = cfg.WebhookURL
			}
			if url == "" {
				return errors.New("webhook url is required (--url or WEBHOOK_URL)")
			}
			if err := registerWebhook(api, url, cfg.WebhookSecret); err != nil {
				return err
			}
			cmd.Printf("webhook set to %s\n", url)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "public HTTPS URL Telegram should post updates to")
	return cmd
}

func webhookDeleteCmd() *cobra.Command {
	var dropPending bool
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the webhook registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := botFromConfig()
			if err != nil {
				return err
			}
			if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: dropPending}); err != nil {
				return fmt.Errorf("delete webhook: %w", err)
			}
			cmd.Println("webhook deleted")
			return nil
		},
	}
	cmd.Flags().BoolVar(&dropPending, "drop-pending", false, "discard updates Telegram has queued")
	return cmd
}

func botFromConfig() (config.Config, *tgbotapi.BotAPI, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("telegram bot: %w", err)
	}
	return cfg, api, nil
}

// registerWebhook calls setWebhook directly so the secret token is sent along.
func registerWebhook(api *tgbotapi.BotAPI, url, secret string) error {
	params := tgbotapi.Params{}
	params["url"] = url
	params.AddNonEmpty("secret_token", secret)
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}
