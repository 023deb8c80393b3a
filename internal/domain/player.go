package domain

import "time"

// Energy and suspicion base values. Per-player caps grow with boost levels.
const (
	BaseEnergy       = 1000
	MaxEnergyCap     = 64000
	BaseMaxSuspicion = 100
)

// Player is the per-user game aggregate. It is stored as a single JSONB
// document in the players row and mutated only under a row lock.
type Player struct {
	UserID int64 `json:"user_id"`

	Balance int64 `json:"balance"`

	// Profit decomposition. ProfitPerHour is derived, never mutated directly:
	// any code that changes a component must call RecomputeProfit.
	BaseProfitPerHour     int64 `json:"base_profit_per_hour"`
	ReferralProfitPerHour int64 `json:"referral_profit_per_hour"`
	CellProfitBonus       int64 `json:"cell_profit_bonus"`
	TasksProfitPerHour    int64 `json:"tasks_profit_per_hour"`
	ProfitPerHour         int64 `json:"profit_per_hour"`

	Energy    int `json:"energy"`
	Suspicion int `json:"suspicion"`

	// Boost levels
	TapGuruLevel        int `json:"tap_guru_level"`
	EnergyLimitLevel    int `json:"energy_limit_level"`
	SuspicionLimitLevel int `json:"suspicion_limit_level"`

	Upgrades      map[string]int  `json:"upgrades"`
	UnlockedSkins map[string]bool `json:"unlocked_skins"`
	CurrentSkin   string          `json:"current_skin"`

	CellID *int64 `json:"cell_id,omitempty"`

	Referrals int `json:"referrals"`

	Daily  DailyCycle     `json:"daily"`
	Cheat  CheatState     `json:"cheat"`
	Glitch GlitchProgress `json:"glitch"`

	PenaltyLog []PenaltyEntry `json:"penalty_log,omitempty"`

	MarketCredits    int64  `json:"market_credits"`
	TonWalletAddress string `json:"ton_wallet_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DailyCycle holds the fields zeroed at the local-midnight boundary.
type DailyCycle struct {
	CompletedTasks        map[string]bool `json:"completed_tasks"`
	CompletedSpecialTasks map[string]bool `json:"completed_special_tasks"`
	DailyTaps             int             `json:"daily_taps"`
	ComboClaimed          bool            `json:"combo_claimed"`
	CipherClaimed         bool            `json:"cipher_claimed"`
	UpgradedToday         map[string]bool `json:"upgraded_today"`
	BoostPurchases        map[string]int  `json:"boost_purchases"`
	LastReset             time.Time       `json:"last_reset"`
}

// CheatState tracks anti-cheat strikes for a player.
type CheatState struct {
	Strikes    int         `json:"strikes"`
	Violations []Violation `json:"violations,omitempty"`
	IsCheater  bool        `json:"is_cheater"`
}

// Violation is one recorded anti-cheat event.
type Violation struct {
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GlitchProgress tracks hidden-code discovery and redemption.
type GlitchProgress struct {
	Discovered map[string]bool `json:"discovered"`
	Claimed    map[string]bool `json:"claimed"`
	Shown      map[string]bool `json:"shown"`
}

// PenaltyEntry is one confiscation record on the player's log.
type PenaltyEntry struct {
	Message     string    `json:"message"`
	Confiscated int64     `json:"confiscated"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewPlayer returns a player document with zeroed defaults for first login.
func NewPlayer(userID int64, now time.Time) *Player {
	return &Player{
		UserID:        userID,
		Energy:        BaseEnergy,
		Upgrades:      make(map[string]int),
		UnlockedSkins: make(map[string]bool),
		Daily: DailyCycle{
			CompletedTasks:        make(map[string]bool),
			CompletedSpecialTasks: make(map[string]bool),
			UpgradedToday:         make(map[string]bool),
			BoostPurchases:        make(map[string]int),
			LastReset:             now,
		},
		Glitch: GlitchProgress{
			Discovered: make(map[string]bool),
			Claimed:    make(map[string]bool),
			Shown:      make(map[string]bool),
		},
		CreatedAt: now,
	}
}

// EnsureMaps re-creates nil maps after JSON decoding of older documents.
func (p *Player) EnsureMaps() {
	if p.Upgrades == nil {
		p.Upgrades = make(map[string]int)
	}
	if p.UnlockedSkins == nil {
		p.UnlockedSkins = make(map[string]bool)
	}
	if p.Daily.CompletedTasks == nil {
		p.Daily.CompletedTasks = make(map[string]bool)
	}
	if p.Daily.CompletedSpecialTasks == nil {
		p.Daily.CompletedSpecialTasks = make(map[string]bool)
	}
	if p.Daily.UpgradedToday == nil {
		p.Daily.UpgradedToday = make(map[string]bool)
	}
	if p.Daily.BoostPurchases == nil {
		p.Daily.BoostPurchases = make(map[string]int)
	}
	if p.Glitch.Discovered == nil {
		p.Glitch.Discovered = make(map[string]bool)
	}
	if p.Glitch.Claimed == nil {
		p.Glitch.Claimed = make(map[string]bool)
	}
	if p.Glitch.Shown == nil {
		p.Glitch.Shown = make(map[string]bool)
	}
}

// RecomputeProfit derives the total from the stored components.
func (p *Player) RecomputeProfit() {
	p.ProfitPerHour = p.BaseProfitPerHour + p.ReferralProfitPerHour + p.CellProfitBonus + p.TasksProfitPerHour
}

// OwnProfit is the player's contribution before social bonuses. Both the
// referral and the cell recalculations are driven by this value.
func (p *Player) OwnProfit() int64 {
	return p.BaseProfitPerHour + p.TasksProfitPerHour
}

// MaxEnergy doubles per energy-limit level, capped globally.
func (p *Player) MaxEnergy() int {
	max := BaseEnergy << uint(p.EnergyLimitLevel)
	if max > MaxEnergyCap {
		return MaxEnergyCap
	}
	return max
}

// MaxSuspicion grows by 10 per suspicion-limit level.
func (p *Player) MaxSuspicion() int {
	return BaseMaxSuspicion + p.SuspicionLimitLevel*10
}

// ClampEnergy keeps energy within [0, MaxEnergy].
func (p *Player) ClampEnergy() {
	if p.Energy < 0 {
		p.Energy = 0
	}
	if max := p.MaxEnergy(); p.Energy > max {
		p.Energy = max
	}
}
