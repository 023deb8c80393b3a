package service

import (
	"reflect"
	"testing"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
)

func TestSettlementShares(t *testing.T) {
	prizes := content.BattleRewards{First: 1000, Second: 600, Third: 300, Participant: 100}

	tests := []struct {
		name         string
		participants []domain.BattleParticipant
		rosters      map[int64][]int64
		wantOrder    []int64
		wantShares   map[int64]int64
	}{
		{
			name: "ranked prizes floor-split across rosters",
			participants: []domain.BattleParticipant{
				{CellID: 1, Score: 500},
				{CellID: 2, Score: 300},
			},
			rosters: map[int64][]int64{
				1: {7, 8, 9},
				2: {4},
			},
			wantOrder:  []int64{4, 7, 8, 9},
			wantShares: map[int64]int64{4: 600, 7: 333, 8: 333, 9: 333},
		},
		{
			name: "payout order is ascending even when the winning cell holds the highest ids",
			participants: []domain.BattleParticipant{
				{CellID: 1, Score: 900},
				{CellID: 2, Score: 100},
			},
			rosters: map[int64][]int64{
				1: {30, 41},
				2: {5},
			},
			wantOrder:  []int64{5, 30, 41},
			wantShares: map[int64]int64{5: 600, 30: 500, 41: 500},
		},
		{
			name: "ranks below third get the flat participant prize",
			participants: []domain.BattleParticipant{
				{CellID: 1}, {CellID: 2}, {CellID: 3}, {CellID: 4},
			},
			rosters: map[int64][]int64{
				1: {1}, 2: {2}, 3: {3}, 4: {4, 40},
			},
			wantOrder:  []int64{1, 2, 3, 4, 40},
			wantShares: map[int64]int64{1: 1000, 2: 600, 3: 300, 4: 50, 40: 50},
		},
		{
			name: "empty roster skipped",
			participants: []domain.BattleParticipant{
				{CellID: 1},
				{CellID: 2},
			},
			rosters: map[int64][]int64{
				1: nil,
				2: {6},
			},
			wantOrder:  []int64{6},
			wantShares: map[int64]int64{6: 600},
		},
		{
			name:         "no participants, no payouts",
			participants: nil,
			rosters:      map[int64][]int64{},
			wantOrder:    []int64{},
			wantShares:   map[int64]int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, shares := settlementShares(tt.participants, tt.rosters, prizes)

			if len(order) != len(tt.wantOrder) {
				t.Fatalf("payees = %v, want %v", order, tt.wantOrder)
			}
			for i := range order {
				if order[i] != tt.wantOrder[i] {
					t.Fatalf("payees = %v, want %v", order, tt.wantOrder)
				}
			}
			if len(shares) != len(tt.wantShares) || (len(shares) > 0 && !reflect.DeepEqual(shares, tt.wantShares)) {
				t.Fatalf("shares = %v, want %v", shares, tt.wantShares)
			}
		})
	}
}

func TestSettlementSharesZeroParticipantPrize(t *testing.T) {
	prizes := content.BattleRewards{First: 100}
	participants := []domain.BattleParticipant{{CellID: 1}, {CellID: 2}}
	rosters := map[int64][]int64{1: {1}, 2: {2}}

	order, shares := settlementShares(participants, rosters, prizes)
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("payees = %v, want only the first-place member", order)
	}
	if shares[1] != 100 {
		t.Fatalf("share = %d, want 100", shares[1])
	}
}
