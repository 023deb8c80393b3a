package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/logger"
	"clicker_backend/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot handles the Telegram side of the game: star-payment confirmation
// (pre-checkout approval and successful_payment settlement) plus a small
// set of admin commands.
type Bot struct {
	api      *tgbotapi.BotAPI
	payments *service.PaymentService
	battles  *service.BattleService
	admin    *service.AdminService
	contents *service.ContentService
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func New(token string, payments *service.PaymentService, battles *service.BattleService, admin *service.AdminService, contents *service.ContentService, adminIDs []int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &Bot{
		api:      api,
		payments: payments,
		battles:  battles,
		admin:    admin,
		contents: contents,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start runs the update loop until Stop.
func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.PreCheckoutQuery != nil:
				b.wg.Add(1)
				go func(q *tgbotapi.PreCheckoutQuery) {
					defer b.wg.Done()
					b.handlePreCheckout(q)
				}(update.PreCheckoutQuery)

			case update.Message != nil && update.Message.SuccessfulPayment != nil:
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handlePayment(msg)
				}(update.Message)

			case update.Message != nil && update.Message.IsCommand():
				if !b.isAdmin(update.Message.From.ID) {
					continue
				}
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleCommand(msg)
				}(update.Message)
			}
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.log.Info("stopping bot...")
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// handlePreCheckout approves the invoice when its payload is well-formed.
// Money has not moved yet, so a malformed payload is rejected here.
func (b *Bot) handlePreCheckout(q *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: q.ID,
		OK:                 true,
	}
	if _, err := service.ParsePayload(q.InvoicePayload); err != nil {
		b.log.Warn("rejecting pre-checkout", "payload", q.InvoicePayload, "err", err)
		answer.OK = false
		answer.ErrorMessage = "unknown purchase"
	}
	if _, err := b.api.Request(answer); err != nil {
		b.log.Error("pre-checkout answer failed", "err", err)
	}
}

// handlePayment settles a confirmed star payment.
func (b *Bot) handlePayment(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, cfg := b.contents.Current()
	if cfg == nil {
		b.log.Error("payment arrived before config load", "payload", msg.SuccessfulPayment.InvoicePayload)
		return
	}

	locale := "en"
	if msg.From != nil && msg.From.LanguageCode == "ru" {
		locale = "ru"
	}

	payload := msg.SuccessfulPayment.InvoicePayload
	if err := b.payments.Confirm(ctx, payload, locale, cfg); err != nil {
		b.log.Error("payment settlement failed", "payload", payload, "err", err)
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "✅ Покупка зачислена!")
	if _, err := b.api.Send(reply); err != nil {
		b.log.Warn("payment ack send failed", "err", err)
	}
}

// handleCommand processes admin commands
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()

	case "battle_start":
		response = b.handleBattleStart(ctx)

	case "battle_end":
		response = b.handleBattleEnd(ctx)

	case "event":
		response = b.handleSetEvent(ctx, msg.CommandArguments())

	case "delete_player":
		response = b.handleDeletePlayer(ctx, msg.CommandArguments())

	default:
		response = "❌ Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("command reply failed", "err", err)
	}
}

func (b *Bot) helpMessage() string {
	return `<b>Команды администратора</b>
/battle_start — начать битву ячеек вне расписания
/battle_end — завершить активную битву и раздать награды
/event ДАТА карта1,карта2,карта3 НАГРАДА ШИФР НАГРАДА — событие дня
/delete_player ID — удалить игрока`
}

func (b *Bot) currentConfig() (*content.GameConfig, string) {
	_, cfg := b.contents.Current()
	if cfg == nil {
		return nil, "⚠️ Конфиг ещё не загружен"
	}
	return cfg, ""
}

func (b *Bot) handleBattleStart(ctx context.Context) string {
	cfg, msg := b.currentConfig()
	if cfg == nil {
		return msg
	}
	battle, err := b.battles.ForceStart(ctx, cfg)
	if err != nil {
		return "❌ " + err.Error()
	}
	return fmt.Sprintf("⚔️ Битва #%d открыта до %s", battle.ID, battle.EndTime.Format(time.RFC822))
}

func (b *Bot) handleBattleEnd(ctx context.Context) string {
	cfg, msg := b.currentConfig()
	if cfg == nil {
		return msg
	}
	battle, err := b.battles.ForceEnd(ctx, cfg)
	if err != nil {
		return "❌ " + err.Error()
	}
	return fmt.Sprintf("🏁 Битва #%d завершена, награды розданы", battle.ID)
}

// /event 2026-09-01 card_a,card_b,card_c 50000 cipher 25000
func (b *Bot) handleSetEvent(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 5 {
		return "Использование: /event ДАТА к1,к2,к3 НАГРАДА ШИФР НАГРАДА"
	}

	date, err := time.Parse("2006-01-02", parts[0])
	if err != nil {
		return "❌ Дата должна быть в формате 2006-01-02"
	}
	combo := strings.Split(parts[1], ",")
	comboReward, err1 := strconv.ParseInt(parts[2], 10, 64)
	cipherReward, err2 := strconv.ParseInt(parts[4], 10, 64)
	if err1 != nil || err2 != nil {
		return "❌ Награды должны быть числами"
	}

	err = b.admin.SetDailyEvent(ctx, &domain.DailyEvent{
		EventDate:    date,
		Combo:        combo,
		ComboReward:  comboReward,
		Cipher:       parts[3],
		CipherReward: cipherReward,
	})
	if err != nil {
		return "❌ " + err.Error()
	}
	return "📅 Событие дня установлено на " + parts[0]
}

func (b *Bot) handleDeletePlayer(ctx context.Context, args string) string {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || id <= 0 {
		return "Использование: /delete_player ID"
	}
	if err := b.admin.DeletePlayer(ctx, id); err != nil {
		return "❌ " + err.Error()
	}
	return fmt.Sprintf("🗑 Игрок %d удалён", id)
}
