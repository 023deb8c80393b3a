package loot

import (
	"crypto/rand"
	"math/big"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
)

// Item kinds in a lootbox pool.
const (
	KindCard = "card"
	KindSkin = "skin"
)

// Item is one candidate entry of a lootbox pool.
type Item struct {
	Kind              string  `json:"kind"`
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Chance            float64 `json:"chance"`
	ProfitPerHour     int64   `json:"profitPerHour,omitempty"`
	SuspicionModifier int     `json:"suspicionModifier"`
}

// RandSource yields a uniform value in [0, 1). Injectable for tests.
type RandSource func() float64

// CryptoRand is the production random source.
func CryptoRand() float64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return 0.5
	}
	return float64(n.Int64()) / 1000000.0
}

// BuildPool assembles the candidate pool for a box type: every card of that
// type plus every skin of that type the player does not own yet, excluding
// supply-capped skins that hit their circulating maximum. circulating maps
// skin id to the number of players owning it.
func BuildPool(cfg *content.GameConfig, boxType string, p *domain.Player, circulating map[string]int) []Item {
	var pool []Item

	for _, card := range cfg.BlackMarketCards {
		if card.BoxType != boxType {
			continue
		}
		pool = append(pool, Item{
			Kind:              KindCard,
			ID:                card.ID,
			Name:              card.Name,
			Chance:            card.Chance,
			ProfitPerHour:     card.ProfitPerHour,
			SuspicionModifier: card.SuspicionModifier,
		})
	}

	for _, skin := range cfg.CoinSkins {
		if skin.BoxType != boxType {
			continue
		}
		if p.UnlockedSkins[skin.ID] {
			continue
		}
		if skin.MaxSupply > 0 && circulating[skin.ID] >= skin.MaxSupply {
			continue
		}
		pool = append(pool, Item{
			Kind:              KindSkin,
			ID:                skin.ID,
			Name:              skin.Name,
			Chance:            skin.Chance,
			SuspicionModifier: skin.SuspicionModifier,
		})
	}

	return pool
}

// Draw selects one item by cumulative weight: a uniform value is drawn over
// the chance total and walked down item by item. The last item absorbs any
// floating-point remainder so the draw never comes back empty on a non-empty
// pool.
func Draw(pool []Item, rnd RandSource) *Item {
	if len(pool) == 0 {
		return nil
	}

	var total float64
	for i := range pool {
		total += pool[i].Chance
	}

	remainder := rnd() * total
	for i := range pool {
		remainder -= pool[i].Chance
		if remainder <= 0 {
			return &pool[i]
		}
	}
	return &pool[len(pool)-1]
}
