package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/digkill/TGCreditBot/internal/models"
)

type UsageLogger interface {
	Log(ctx context.Context, record models.UsageRecord) error
}

// ImageArchiver copies a generated image to long-term storage and returns its
// new URL.
type ImageArchiver interface {
	Archive(ctx context.Context, sourceURL string) (string, error)
}

// MeteringService settles credit for metered operations after the provider
// call succeeded.
type MeteringService struct {
	log      *slog.Logger
	users    UserStore
	usage    UsageLogger
	archiver ImageArchiver
}

func NewMeteringService(log *slog.Logger, users UserStore, usage UsageLogger, archiver ImageArchiver) *MeteringService {
	return &MeteringService{
		log:      log,
		users:    users,
		usage:    usage,
		archiver: archiver,
	}
}

// Charge debits cost from the user when the balance still covers it. The
// returned flag is false when a concurrent request spent the credit first.
func (s *MeteringService) Charge(ctx context.Context, user *models.User, kind models.UsageKind, prompt, resultURL string) (bool, error) {
	cost := costOf(kind)
	applied, err := s.users.Debit(ctx, user.TelegramID, cost, cost)
	if err != nil {
		return false, fmt.Errorf("debit %s: %w", kind, err)
	}
	if !applied {
		s.log.Warn("debit skipped, balance changed", "telegram_id", user.TelegramID, "kind", kind, "cost", cost)
		return false, nil
	}
	user.Credit -= cost

	if kind == models.UsageImage && s.archiver != nil && resultURL != "" {
		archived, err := s.archiver.Archive(ctx, resultURL)
		if err != nil {
			s.log.Error("failed to archive image", "telegram_id", user.TelegramID, "err", err)
		} else {
			resultURL = archived
		}
	}

	record := models.UsageRecord{
		TelegramID: user.TelegramID,
		Kind:       kind,
		Prompt:     prompt,
		Cost:       cost,
		ResultURL:  resultURL,
		CreatedAt:  time.Now().Unix(),
	}
	if s.usage != nil {
		if err := s.usage.Log(ctx, record); err != nil {
			s.log.Error("failed to log usage", "err", err)
		}
	}
	return true, nil
}

func costOf(kind models.UsageKind) int {
	if kind == models.UsageImage {
		return models.CostImage
	}
	return models.CostQuery
}
