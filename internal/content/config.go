package content

// GameConfig is the versioned content document consumed read-only by every
// game operation. JSON field names are a compatibility contract with the
// admin console and must not change.
type GameConfig struct {
	Upgrades         []Upgrade      `json:"upgrades"`
	Tasks            []Task         `json:"tasks"`
	SpecialTasks     []Task         `json:"specialTasks"`
	Boosts           []Boost        `json:"boosts"`
	BlackMarketCards []Card         `json:"blackMarketCards"`
	CoinSkins        []Skin         `json:"coinSkins"`
	GlitchEvents     []GlitchEvent  `json:"glitchEvents"`
	Leagues          []League       `json:"leagues"`
	BattleSchedule   BattleSchedule `json:"battleSchedule"`
	BattleRewards    BattleRewards  `json:"battleRewards"`

	CellCreationCost     int64   `json:"cellCreationCost"`
	CellMaxMembers       int     `json:"cellMaxMembers"`
	InformantRecruitCost int64   `json:"informantRecruitCost"`
	LootboxCostCoins     int64   `json:"lootboxCostCoins"`
	LootboxCostStars     int64   `json:"lootboxCostStars"`
	CellBattleTicketCost int     `json:"cellBattleTicketCost"`
	InformantProfitBonus float64 `json:"informantProfitBonus"`
	CellBankProfitShare  float64 `json:"cellBankProfitShare"`
}

// Upgrade is one purchasable profit generator.
type Upgrade struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	BasePrice         int64  `json:"basePrice"`
	BaseProfitPerHour int64  `json:"baseProfitPerHour"`
}

// Task types understood by the progression service.
const (
	TaskTypeTaps      = "taps"
	TaskTypeVideoCode = "video_code"
)

// Task is one claimable mission, daily or one-time ("special").
type Task struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	Reward       Reward `json:"reward"`
	RequiredTaps int    `json:"requiredTaps,omitempty"`
	Code         string `json:"code,omitempty"`
}

// Reward is a tagged variant: "coins" credits balance, "profit" adds to base
// profit per hour. Any other tag is deliberately a no-op.
type Reward struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
}

// Boost ids carry distinct exponential cost bases.
const (
	BoostTapGuru        = "tap_guru"
	BoostEnergyLimit    = "energy_limit"
	BoostSuspicionLimit = "suspicion_limit"
)

// Boost is a purchasable per-player multiplier with a daily purchase cap.
type Boost struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BasePrice  int64  `json:"basePrice"`
	DailyLimit int    `json:"dailyLimit"`
}

// Lootbox types: "coin" boxes cost soft currency, "star" boxes are paid
// through the payment provider.
const (
	BoxTypeCoin = "coin"
	BoxTypeStar = "star"
)

// Card is a lootbox profit card.
type Card struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	BoxType           string  `json:"boxType"`
	Chance            float64 `json:"chance"`
	ProfitPerHour     int64   `json:"profitPerHour"`
	SuspicionModifier int     `json:"suspicionModifier"`
}

// Skin is a cosmetic lootbox drop, optionally supply-capped.
type Skin struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	BoxType           string  `json:"boxType"`
	Chance            float64 `json:"chance"`
	MaxSupply         int     `json:"maxSupply,omitempty"`
	SuspicionModifier int     `json:"suspicionModifier"`
}

// GlitchEvent is a hidden code with a one-time reward.
type GlitchEvent struct {
	Code    string `json:"code"`
	Trigger string `json:"trigger"`
	Reward  int64  `json:"reward"`
}

// League is a display tier by balance.
type League struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MinBalance int64  `json:"minBalance"`
}

// BattleSchedule is the weekly start rule for cell battles.
type BattleSchedule struct {
	DayOfWeek     int `json:"dayOfWeek"` // 0 = Sunday, per time.Weekday
	StartHour     int `json:"startHour"`
	DurationHours int `json:"durationHours"`
}

// BattleRewards holds fixed prizes for the top three cells plus the flat
// participation prize.
type BattleRewards struct {
	First       int64 `json:"first"`
	Second      int64 `json:"second"`
	Third       int64 `json:"third"`
	Participant int64 `json:"participant"`
}

// FindUpgrade returns the upgrade with the given id, or nil.
func (c *GameConfig) FindUpgrade(id string) *Upgrade {
	for i := range c.Upgrades {
		if c.Upgrades[i].ID == id {
			return &c.Upgrades[i]
		}
	}
	return nil
}

// FindTask searches daily tasks first, then special tasks. The second return
// reports whether the match came from the special set.
func (c *GameConfig) FindTask(id string) (*Task, bool) {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return &c.Tasks[i], false
		}
	}
	for i := range c.SpecialTasks {
		if c.SpecialTasks[i].ID == id {
			return &c.SpecialTasks[i], true
		}
	}
	return nil, false
}

// FindBoost returns the boost with the given id, or nil.
func (c *GameConfig) FindBoost(id string) *Boost {
	for i := range c.Boosts {
		if c.Boosts[i].ID == id {
			return &c.Boosts[i]
		}
	}
	return nil
}

// FindSkin returns the skin with the given id, or nil.
func (c *GameConfig) FindSkin(id string) *Skin {
	for i := range c.CoinSkins {
		if c.CoinSkins[i].ID == id {
			return &c.CoinSkins[i]
		}
	}
	return nil
}
