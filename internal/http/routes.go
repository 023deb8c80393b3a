package http

import (
	"clicker_backend/internal/config"
	"clicker_backend/internal/http/handlers"
	"clicker_backend/internal/http/middleware"
	"clicker_backend/internal/redisboard"
	"clicker_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires the whole HTTP surface and returns the handler so
// main can finish cross-wiring (workers, content cache).
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, standings *redisboard.Standings, version string) (*handlers.Handler, *ws.Hub) {
	h := handlers.NewHandler(db, cfg, standings)
	healthHandler := handlers.NewHealthHandler(db, standings, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api/v1")
	api.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	// Auth
	api.POST("/auth", h.Auth)

	// Content
	api.GET("/config", h.GameConfig)

	// Player state
	tapRL := middleware.TapRateLimit(cfg.TapRateLimit, cfg.TapRateWindow)
	api.GET("/me", middleware.JWT(), h.Me)
	api.POST("/taps", middleware.JWT(), tapRL, h.TapSync)
	api.POST("/energy/restore", middleware.JWT(), h.RestoreEnergy)
	api.POST("/skins/select", middleware.JWT(), h.SelectSkin)

	// Progression
	api.POST("/tasks/:id/claim", middleware.JWT(), h.ClaimTask)
	api.POST("/upgrades/:id/buy", middleware.JWT(), h.BuyUpgrade)
	api.POST("/boosts/:id/buy", middleware.JWT(), h.BuyBoost)
	api.POST("/combo/claim", middleware.JWT(), h.ClaimCombo)
	api.POST("/cipher/claim", middleware.JWT(), h.ClaimCipher)
	api.POST("/glitch/discover", middleware.JWT(), h.DiscoverGlitch)
	api.POST("/glitch/claim", middleware.JWT(), h.ClaimGlitch)

	// Lootboxes (coin-priced; star boxes settle via payment callback)
	api.POST("/lootbox/open", middleware.JWT(), h.OpenLootbox)

	// Cells
	cell := api.Group("/cell")
	cell.Use(middleware.JWT())
	{
		cell.POST("", h.CreateCell)
		cell.POST("/join", h.JoinCell)
		cell.POST("/leave", h.LeaveCell)
		cell.GET("/:id", h.GetCell)
		cell.POST("/informant", h.RecruitInformant)
		cell.POST("/tickets", h.BuyBattleTickets)
	}

	// Battles
	api.GET("/battle/active", h.ActiveBattle)
	api.GET("/battle/:id/standings", h.BattleStandings)
	api.POST("/battle/join", middleware.JWT(), h.JoinBattle)

	// Market
	api.GET("/market", h.BrowseMarket)
	api.POST("/market", middleware.JWT(), h.CreateListing)
	api.POST("/market/:id/cancel", middleware.JWT(), h.CancelListing)

	// TON wallet linking
	api.POST("/wallet/connect", middleware.JWT(), h.ConnectWallet)
	api.DELETE("/wallet", middleware.JWT(), h.DisconnectWallet)

	// Payment provider callback (bot-to-server, shared secret)
	api.POST("/payments/callback", h.PaymentCallback(cfg.PaymentSecret))

	// Admin
	admin := api.Group("/admin")
	admin.Use(middleware.JWT())
	{
		admin.POST("/config", h.PublishConfig)
		admin.POST("/daily-event", h.SetDailyEvent)
		admin.DELETE("/players/:id", h.DeletePlayer)
		admin.POST("/battle/start", h.ForceStartBattle)
		admin.POST("/battle/end", h.ForceEndBattle)
	}

	// WebSocket live standings
	hub := ws.NewHub()
	r.GET("/ws", h.WS(hub))

	return h, hub
}
