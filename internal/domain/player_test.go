package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRecomputeProfitDerivesTotal(t *testing.T) {
	p := NewPlayer(1, time.Now())
	p.BaseProfitPerHour = 100
	p.ReferralProfitPerHour = 30
	p.CellProfitBonus = 20
	p.TasksProfitPerHour = 50
	p.RecomputeProfit()

	if p.ProfitPerHour != 200 {
		t.Fatalf("ProfitPerHour = %d, want 200", p.ProfitPerHour)
	}
	if p.OwnProfit() != 150 {
		t.Fatalf("OwnProfit = %d, want 150 (base+tasks only)", p.OwnProfit())
	}
}

func TestEnsureMapsAfterDecode(t *testing.T) {
	// older documents may miss whole sub-objects
	var p Player
	if err := json.Unmarshal([]byte(`{"user_id": 1, "balance": 10}`), &p); err != nil {
		t.Fatal(err)
	}
	p.EnsureMaps()

	p.Upgrades["u"] = 1
	p.UnlockedSkins["s"] = true
	p.Daily.CompletedTasks["t"] = true
	p.Daily.CompletedSpecialTasks["st"] = true
	p.Daily.UpgradedToday["u"] = true
	p.Daily.BoostPurchases["b"] = 1
	p.Glitch.Discovered["g"] = true
	p.Glitch.Claimed["g"] = true
	p.Glitch.Shown["g"] = true
}
