package content

import (
	"encoding/json"
	"testing"
)

func TestConfigJSONFieldNames(t *testing.T) {
	// the admin console produces these exact field names
	raw := `{
		"upgrades": [{"id": "u1", "basePrice": 100, "baseProfitPerHour": 10}],
		"tasks": [{"id": "t1", "type": "taps", "requiredTaps": 50, "reward": {"type": "coins", "amount": 500}}],
		"specialTasks": [{"id": "s1", "type": "video_code", "code": "SECRET", "reward": {"type": "profit", "amount": 20}}],
		"boosts": [{"id": "tap_guru", "basePrice": 2000, "dailyLimit": 3}],
		"blackMarketCards": [{"id": "c1", "boxType": "coin", "chance": 50, "profitPerHour": 5, "suspicionModifier": 2}],
		"coinSkins": [{"id": "sk1", "boxType": "star", "chance": 10, "maxSupply": 100}],
		"glitchEvents": [{"code": "konami", "reward": 1000}],
		"battleSchedule": {"dayOfWeek": 6, "startHour": 18, "durationHours": 4},
		"battleRewards": {"first": 100000, "second": 50000, "third": 25000, "participant": 1000},
		"cellCreationCost": 25000,
		"cellMaxMembers": 20,
		"informantRecruitCost": 10000,
		"lootboxCostCoins": 5000,
		"lootboxCostStars": 25,
		"cellBattleTicketCost": 1,
		"informantProfitBonus": 0.05,
		"cellBankProfitShare": 0.1
	}`

	var cfg GameConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if cfg.Upgrades[0].BasePrice != 100 || cfg.Upgrades[0].BaseProfitPerHour != 10 {
		t.Fatalf("upgrade fields not decoded: %+v", cfg.Upgrades[0])
	}
	if cfg.Tasks[0].RequiredTaps != 50 || cfg.Tasks[0].Reward.Amount != 500 {
		t.Fatalf("task fields not decoded: %+v", cfg.Tasks[0])
	}
	if cfg.SpecialTasks[0].Code != "SECRET" {
		t.Fatalf("special task code not decoded: %+v", cfg.SpecialTasks[0])
	}
	if cfg.BattleSchedule.DayOfWeek != 6 || cfg.BattleSchedule.DurationHours != 4 {
		t.Fatalf("battle schedule not decoded: %+v", cfg.BattleSchedule)
	}
	if cfg.CellCreationCost != 25000 || cfg.InformantProfitBonus != 0.05 {
		t.Fatalf("scalar fields not decoded")
	}
}

func TestFindTask(t *testing.T) {
	cfg := &GameConfig{
		Tasks:        []Task{{ID: "daily_1"}},
		SpecialTasks: []Task{{ID: "special_1"}},
	}

	if task, special := cfg.FindTask("daily_1"); task == nil || special {
		t.Fatalf("daily_1: task=%v special=%v", task, special)
	}
	if task, special := cfg.FindTask("special_1"); task == nil || !special {
		t.Fatalf("special_1: task=%v special=%v", task, special)
	}
	if task, _ := cfg.FindTask("missing"); task != nil {
		t.Fatalf("missing task found: %+v", task)
	}
}

func TestFindHelpersReturnNilOnMiss(t *testing.T) {
	cfg := &GameConfig{
		Upgrades:  []Upgrade{{ID: "u1"}},
		Boosts:    []Boost{{ID: BoostTapGuru}},
		CoinSkins: []Skin{{ID: "sk1"}},
	}

	if cfg.FindUpgrade("u1") == nil || cfg.FindUpgrade("nope") != nil {
		t.Fatal("FindUpgrade")
	}
	if cfg.FindBoost(BoostTapGuru) == nil || cfg.FindBoost("nope") != nil {
		t.Fatal("FindBoost")
	}
	if cfg.FindSkin("sk1") == nil || cfg.FindSkin("nope") != nil {
		t.Fatal("FindSkin")
	}
}
