package economy

import (
	"math"
	"reflect"
	"testing"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
)

func newPlayer() *domain.Player {
	return domain.NewPlayer(1, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestApplyRewardCoins(t *testing.T) {
	p := newPlayer()
	p.Balance = 100

	ApplyReward(p, content.Reward{Type: "coins", Amount: 250})
	if p.Balance != 350 {
		t.Fatalf("balance = %d; want 350", p.Balance)
	}
}

func TestApplyRewardProfit(t *testing.T) {
	p := newPlayer()
	p.BaseProfitPerHour = 40
	p.RecomputeProfit()

	ApplyReward(p, content.Reward{Type: "profit", Amount: 60})
	if p.TasksProfitPerHour != 60 {
		t.Fatalf("tasks profit = %d; want 60", p.TasksProfitPerHour)
	}
	if p.ProfitPerHour != 100 {
		t.Fatalf("profit per hour = %d; want 100", p.ProfitPerHour)
	}
}

func TestApplyRewardUnknownTagIsNoop(t *testing.T) {
	p := newPlayer()
	p.Balance = 100
	before := *p

	ApplyReward(p, content.Reward{Type: "gems", Amount: 9999})
	if p.Balance != before.Balance || p.ProfitPerHour != before.ProfitPerHour {
		t.Fatalf("unknown reward tag mutated the document")
	}
}

func TestApplySuspicionZeroIsNoop(t *testing.T) {
	p := newPlayer()
	p.Balance = 1000
	p.Suspicion = 42
	before := *p

	ApplySuspicion(p, 0, "en", time.Now())
	if !reflect.DeepEqual(before, *p) {
		t.Fatalf("zero modifier mutated the document")
	}
}

func TestApplySuspicionPenalty(t *testing.T) {
	p := newPlayer()
	p.Balance = 1000
	p.Suspicion = 90

	ApplySuspicion(p, 20, "en", time.Now())

	if p.Balance != 750 {
		t.Fatalf("balance = %d; want 750 (25%% confiscated)", p.Balance)
	}
	if p.Suspicion != 50 {
		t.Fatalf("suspicion = %d; want 50 (half of max)", p.Suspicion)
	}
	if len(p.PenaltyLog) != 1 {
		t.Fatalf("penalty log entries = %d; want exactly 1", len(p.PenaltyLog))
	}
	if p.PenaltyLog[0].Confiscated != 250 {
		t.Fatalf("confiscated = %d; want 250", p.PenaltyLog[0].Confiscated)
	}
}

func TestApplySuspicionClamped(t *testing.T) {
	p := newPlayer()
	p.Balance = 100

	seq := []int{-50, 30, 500, -500, 90, 90, -10}
	for _, m := range seq {
		ApplySuspicion(p, m, "en", time.Now())
		if p.Suspicion < 0 || p.Suspicion > p.MaxSuspicion() {
			t.Fatalf("suspicion %d out of [0,%d] after modifier %d", p.Suspicion, p.MaxSuspicion(), m)
		}
	}
}

func TestApplySuspicionRaisedCeiling(t *testing.T) {
	p := newPlayer()
	p.SuspicionLimitLevel = 3 // max = 130

	if p.MaxSuspicion() != 130 {
		t.Fatalf("max suspicion = %d; want 130", p.MaxSuspicion())
	}
	ApplySuspicion(p, 129, "en", time.Now())
	if len(p.PenaltyLog) != 0 {
		t.Fatalf("penalty applied below raised ceiling")
	}
}

func TestUpgradePrice(t *testing.T) {
	cases := []struct {
		base  int64
		level int
		want  int64
	}{
		{100, 0, 100},
		{100, 1, 114},  // floor(100*1.15)
		{100, 5, 201},  // floor(100*1.15^5) = floor(201.13..)
		{1000, 10, 4045},
	}
	for _, tc := range cases {
		if got := UpgradePrice(tc.base, tc.level); got != tc.want {
			t.Fatalf("UpgradePrice(%d,%d) = %d; want %d", tc.base, tc.level, got, tc.want)
		}
	}
}

func TestUpgradeProfitGain(t *testing.T) {
	cases := []struct {
		base  int64
		level int
		want  int64
	}{
		{100, 0, 100},
		{100, 1, 107},
		{100, 10, int64(math.Floor(100 * math.Pow(1.07, 10)))},
	}
	for _, tc := range cases {
		if got := UpgradeProfitGain(tc.base, tc.level); got != tc.want {
			t.Fatalf("UpgradeProfitGain(%d,%d) = %d; want %d", tc.base, tc.level, got, tc.want)
		}
	}
}

func TestBoostCostBases(t *testing.T) {
	if got := BoostCost(content.BoostTapGuru, 100, 2); got != 225 {
		t.Fatalf("tap guru cost = %d; want 225", got)
	}
	if got := BoostCost(content.BoostEnergyLimit, 100, 2); got != 324 {
		t.Fatalf("energy limit cost = %d; want 324", got)
	}
	if got := BoostCost(content.BoostSuspicionLimit, 100, 2); got != 400 {
		t.Fatalf("suspicion limit cost = %d; want 400", got)
	}
}

func TestReferralProfit(t *testing.T) {
	got := ReferralProfit([]int64{100, 205, 99})
	if got != 40 { // floor(404 * 0.1)
		t.Fatalf("referral profit = %d; want 40", got)
	}
	if ReferralProfit(nil) != 0 {
		t.Fatalf("referral profit with no referrals should be 0")
	}
}

func TestCellBonus(t *testing.T) {
	if got := CellBonus(1000, 3, 0.02); got != 60 {
		t.Fatalf("cell bonus = %d; want 60", got)
	}
	if got := CellBonus(1000, 0, 0.02); got != 0 {
		t.Fatalf("cell bonus with no informants = %d; want 0", got)
	}
}

func TestBankAccrual(t *testing.T) {
	got := BankAccrual(1000, 0.05, time.Hour)
	if got != 50 {
		t.Fatalf("bank accrual over 3600s = %d; want 50", got)
	}
	if BankAccrual(1000, 0.05, 0) != 0 {
		t.Fatalf("bank accrual with no elapsed time should be 0")
	}
}

func TestMaxEnergyDoubling(t *testing.T) {
	p := newPlayer()
	if p.MaxEnergy() != domain.BaseEnergy {
		t.Fatalf("base max energy = %d; want %d", p.MaxEnergy(), domain.BaseEnergy)
	}
	p.EnergyLimitLevel = 2
	if p.MaxEnergy() != domain.BaseEnergy*4 {
		t.Fatalf("max energy at level 2 = %d; want %d", p.MaxEnergy(), domain.BaseEnergy*4)
	}
	p.EnergyLimitLevel = 30
	if p.MaxEnergy() != domain.MaxEnergyCap {
		t.Fatalf("max energy should cap at %d, got %d", domain.MaxEnergyCap, p.MaxEnergy())
	}
}
