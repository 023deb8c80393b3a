package loot

import (
	"testing"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
)

func fixedRand(v float64) RandSource {
	return func() float64 { return v }
}

func TestDrawCumulativeWalk(t *testing.T) {
	pool := []Item{
		{ID: "a", Chance: 50},
		{ID: "b", Chance: 20},
		{ID: "c", Chance: 30},
	}

	cases := []struct {
		rnd  float64
		want string
	}{
		{0.0, "a"},
		{0.5, "a"}, // remainder hits exactly 0 at the boundary
		{0.51, "b"},
		{0.7, "b"},
		{0.71, "c"},
		{0.99, "c"}, // 99 drawn from total 100 lands on the last item
	}
	for _, tc := range cases {
		got := Draw(pool, fixedRand(tc.rnd))
		if got == nil || got.ID != tc.want {
			t.Fatalf("Draw(rnd=%v) = %v; want %s", tc.rnd, got, tc.want)
		}
	}
}

func TestDrawFallsBackToLastItem(t *testing.T) {
	pool := []Item{
		{ID: "a", Chance: 0.1},
		{ID: "b", Chance: 0.2},
	}
	// A source returning ~1.0 can leave a positive remainder after the walk
	// due to floating-point error; the last item must absorb it.
	got := Draw(pool, fixedRand(0.9999999999999999))
	if got == nil || got.ID != "b" {
		t.Fatalf("Draw fallback = %v; want b", got)
	}
}

func TestDrawEmptyPool(t *testing.T) {
	if got := Draw(nil, fixedRand(0.5)); got != nil {
		t.Fatalf("Draw on empty pool = %v; want nil", got)
	}
}

func TestBuildPoolFilters(t *testing.T) {
	cfg := &content.GameConfig{
		BlackMarketCards: []content.Card{
			{ID: "card_coin", BoxType: content.BoxTypeCoin, Chance: 40, ProfitPerHour: 100},
			{ID: "card_star", BoxType: content.BoxTypeStar, Chance: 40, ProfitPerHour: 500},
		},
		CoinSkins: []content.Skin{
			{ID: "skin_owned", BoxType: content.BoxTypeCoin, Chance: 30},
			{ID: "skin_capped", BoxType: content.BoxTypeCoin, Chance: 20, MaxSupply: 5},
			{ID: "skin_open", BoxType: content.BoxTypeCoin, Chance: 10, MaxSupply: 5},
			{ID: "skin_star", BoxType: content.BoxTypeStar, Chance: 10},
		},
	}

	p := domain.NewPlayer(1, time.Now())
	p.UnlockedSkins["skin_owned"] = true

	circulating := map[string]int{
		"skin_capped": 5,
		"skin_open":   4,
	}

	pool := BuildPool(cfg, content.BoxTypeCoin, p, circulating)

	want := map[string]bool{"card_coin": true, "skin_open": true}
	if len(pool) != len(want) {
		t.Fatalf("pool size = %d; want %d (%v)", len(pool), len(want), pool)
	}
	for _, item := range pool {
		if !want[item.ID] {
			t.Fatalf("unexpected pool item %q", item.ID)
		}
	}
}
