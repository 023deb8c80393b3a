package handlers

import (
	"errors"
	"net/http"

	"clicker_backend/internal/config"
	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/redisboard"
	"clicker_backend/internal/repository"
	"clicker_backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler владеет всеми сервисами и раздаёт их роутам.
type Handler struct {
	DB       *pgxpool.Pool
	BotToken string
	admins   map[int64]bool // telegram ids allowed on /admin routes

	Progression *service.ProgressionService
	Social      *service.SocialService
	Loot        *service.LootService
	Battles     *service.BattleService
	Market      *service.MarketService
	Payments    *service.PaymentService
	Content     *service.ContentService
	Admin       *service.AdminService

	players *repository.PlayerRepository
}

func NewHandler(db *pgxpool.Pool, cfg *config.Config, standings *redisboard.Standings) *Handler {
	social := service.NewSocialService(db)
	progression := service.NewProgressionService(db, social, cfg.ResetTimezone)
	battles := service.NewBattleService(db, standings, cfg.ResetTimezone)
	progression.SetScoreSink(battles)
	loot := service.NewLootService(db)
	market := service.NewMarketService(db)

	admins := make(map[int64]bool, len(cfg.AdminTelegramIDs))
	for _, id := range cfg.AdminTelegramIDs {
		admins[id] = true
	}

	return &Handler{
		DB:          db,
		BotToken:    cfg.BotToken,
		admins:      admins,
		Progression: progression,
		Social:      social,
		Loot:        loot,
		Battles:     battles,
		Market:      market,
		Payments:    service.NewPaymentService(progression, loot, market),
		Content:     service.NewContentService(db),
		Admin:       service.NewAdminService(db),
		players:     repository.NewPlayerRepository(db),
	}
}

// getUserID извлекает user_id из контекста Gin
func getUserID(c *gin.Context) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	uid, ok := uidVal.(int64)
	return uid, ok
}

// requireUser aborts with 401 when the JWT middleware did not run.
func requireUser(c *gin.Context) (int64, bool) {
	uid, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return uid, ok
}

// requireAdmin checks the authed user's telegram id against the admin list.
func (h *Handler) requireAdmin(c *gin.Context) (int64, bool) {
	uid, ok := requireUser(c)
	if !ok {
		return 0, false
	}
	u, err := h.players.GetUserByID(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return 0, false
	}
	if !h.admins[u.TgID] {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return 0, false
	}
	return uid, true
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNotEnoughEnergy):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrAlreadyInCell),
		errors.Is(err, domain.ErrNotInCell),
		errors.Is(err, domain.ErrCellFull),
		errors.Is(err, domain.ErrBattleActive),
		errors.Is(err, domain.ErrNoActiveBattle),
		errors.Is(err, domain.ErrNoItemsAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentConfig returns the cached game config or fails the request.
func (h *Handler) currentConfig(c *gin.Context) (*content.GameConfig, bool) {
	_, cfg := h.Content.Current()
	if cfg == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "game config not loaded"})
		return nil, false
	}
	return cfg, true
}
