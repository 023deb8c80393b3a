package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/logger"
)

// Payment payload kinds as encoded by the frontend into the invoice payload.
const (
	PayKindTask    = "task"
	PayKindLootbox = "lootbox"
	PayKindMarket  = "market_purchase"
)

// PaymentPayload is the decoded "<kind>-<userId>-<itemId>" invoice payload.
type PaymentPayload struct {
	Kind   string
	UserID int64
	ItemID string
}

// ParsePayload decodes an invoice payload string. The item id may itself
// contain dashes, so only the first two separators are structural.
func ParsePayload(raw string) (*PaymentPayload, error) {
	parts := strings.SplitN(raw, "-", 3)
	if len(parts) != 3 {
		return nil, domain.Validation("malformed payment payload")
	}
	switch parts[0] {
	case PayKindTask, PayKindLootbox, PayKindMarket:
	default:
		return nil, domain.Validation("unknown payment kind: " + parts[0])
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || userID <= 0 {
		return nil, domain.Validation("bad user id in payment payload")
	}
	if parts[2] == "" {
		return nil, domain.Validation("empty item id in payment payload")
	}
	return &PaymentPayload{Kind: parts[0], UserID: userID, ItemID: parts[2]}, nil
}

// PaymentService dispatches confirmed provider payments to the purchase
// they unlock. Everything here runs after money has changed hands, so
// failures are logged loudly and surfaced for the provider to retry.
type PaymentService struct {
	progress *ProgressionService
	loot     *LootService
	market   *MarketService
}

func NewPaymentService(progress *ProgressionService, loot *LootService, market *MarketService) *PaymentService {
	return &PaymentService{progress: progress, loot: loot, market: market}
}

// Confirm applies a successful payment identified by its payload.
func (s *PaymentService) Confirm(ctx context.Context, rawPayload, locale string, cfg *content.GameConfig) error {
	payload, err := ParsePayload(rawPayload)
	if err != nil {
		return err
	}

	log := logger.Get()
	switch payload.Kind {
	case PayKindTask:
		_, err = s.progress.GrantPaidTask(ctx, payload.UserID, payload.ItemID, cfg)
	case PayKindLootbox:
		_, _, err = s.loot.OpenStarBox(ctx, payload.UserID, locale, cfg)
	case PayKindMarket:
		var listingID int64
		listingID, err = strconv.ParseInt(payload.ItemID, 10, 64)
		if err != nil {
			return domain.Validation("bad listing id in payment payload")
		}
		_, err = s.market.Buy(ctx, payload.UserID, listingID)
	}

	if err != nil {
		log.Error("payment confirm failed",
			"kind", payload.Kind, "user_id", payload.UserID, "item_id", payload.ItemID, "err", err)
		return fmt.Errorf("confirm %s payment: %w", payload.Kind, err)
	}
	log.Info("payment confirmed",
		"kind", payload.Kind, "user_id", payload.UserID, "item_id", payload.ItemID)
	return nil
}
