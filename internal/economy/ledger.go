package economy

import (
	"fmt"
	"math"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
)

// Referral constants: flat one-time join credit and the share of each direct
// referral's own profit that flows to the referrer.
const (
	ReferralJoinBonus   = 5000
	ReferralProfitShare = 0.1
)

// ApplyReward credits a tagged reward to the player document. An unknown tag
// is a no-op; callers rely on that when content ships reward types the
// backend does not know yet.
func ApplyReward(p *domain.Player, reward content.Reward) {
	switch reward.Type {
	case "coins":
		p.Balance += reward.Amount
	case "profit":
		p.TasksProfitPerHour += reward.Amount
		p.RecomputeProfit()
	}
}

// ApplySuspicion adds modifier to the player's suspicion meter. Crossing the
// ceiling confiscates 25% of balance, halves the meter and appends one
// localized penalty-log entry. A zero modifier is a guaranteed no-op.
func ApplySuspicion(p *domain.Player, modifier int, locale string, now time.Time) {
	if modifier == 0 {
		return
	}

	max := p.MaxSuspicion()
	p.Suspicion += modifier

	if p.Suspicion >= max {
		confiscated := p.Balance / 4
		p.Balance -= confiscated
		p.Suspicion = max / 2
		p.PenaltyLog = append(p.PenaltyLog, domain.PenaltyEntry{
			Message:     penaltyMessage(locale, confiscated),
			Confiscated: confiscated,
			CreatedAt:   now,
		})
	}

	if p.Suspicion < 0 {
		p.Suspicion = 0
	}
	if p.Suspicion > max {
		p.Suspicion = max
	}
}

func penaltyMessage(locale string, confiscated int64) string {
	switch locale {
	case "ru":
		return fmt.Sprintf("Вы попали под подозрение: конфисковано %d монет", confiscated)
	default:
		return fmt.Sprintf("You drew too much suspicion: %d coins confiscated", confiscated)
	}
}

// UpgradePrice is the cost of buying the next level when the current level
// is level: floor(base * 1.15^level).
func UpgradePrice(basePrice int64, level int) int64 {
	return int64(math.Floor(float64(basePrice) * math.Pow(1.15, float64(level))))
}

// UpgradeProfitGain is the profit added by a purchase at the current level:
// floor(base * 1.07^level).
func UpgradeProfitGain(baseProfit int64, level int) int64 {
	return int64(math.Floor(float64(baseProfit) * math.Pow(1.07, float64(level))))
}

// BoostCost uses a distinct exponential base per boost id.
func BoostCost(boostID string, basePrice int64, level int) int64 {
	base := 1.5
	switch boostID {
	case content.BoostEnergyLimit:
		base = 1.8
	case content.BoostSuspicionLimit:
		base = 2.0
	}
	return int64(math.Floor(float64(basePrice) * math.Pow(base, float64(level))))
}

// ReferralProfit computes a referrer's referral component from the own
// profits of their direct referrals.
func ReferralProfit(ownProfits []int64) int64 {
	var sum int64
	for _, p := range ownProfits {
		sum += p
	}
	return int64(math.Floor(float64(sum) * ReferralProfitShare))
}

// CellBonus computes a member's cell component: own profit times informant
// count times the configured per-informant percentage.
func CellBonus(ownProfit int64, informants int, informantBonus float64) int64 {
	if informants <= 0 {
		return 0
	}
	return int64(math.Floor(float64(ownProfit) * float64(informants) * informantBonus))
}

// BankAccrual is the cell bank income over elapsed time: the members'
// combined hourly profit times the bank share, prorated by seconds.
func BankAccrual(totalProfitPerHour int64, bankShare float64, elapsed time.Duration) int64 {
	if elapsed <= 0 || totalProfitPerHour <= 0 {
		return 0
	}
	return int64(math.Floor(float64(totalProfitPerHour) * bankShare * elapsed.Seconds() / 3600.0))
}
