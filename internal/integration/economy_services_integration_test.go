package integration

import (
	"context"
	"reflect"
	"testing"
	"time"

	"clicker_backend/internal/content"
	"clicker_backend/internal/domain"
	"clicker_backend/internal/economy"
	"clicker_backend/internal/redisboard"
	"clicker_backend/internal/repository"
	"clicker_backend/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func createPlayer(t *testing.T, db *pgxpool.Pool, name string, referredBy *int64) *domain.User {
	t.Helper()
	players := repository.NewPlayerRepository(db)
	u := &domain.User{TgID: time.Now().UnixNano(), Username: name}
	if _, err := players.CreateUser(context.Background(), u, referredBy); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	t.Cleanup(func() { players.Delete(context.Background(), u.ID) })
	return u
}

func createCellWithOwner(t *testing.T, db *pgxpool.Pool, name string, ownerID int64) *domain.Cell {
	t.Helper()
	cells := repository.NewCellRepository(db)
	ctx := context.Background()

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	cell, err := cells.CreateTx(ctx, tx, name, ownerID)
	if err != nil {
		t.Fatalf("create cell: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return cell
}

func TestBattleService_SettleExactlyOnce(t *testing.T) {
	db := testPool(t)
	ctx := context.Background()
	players := repository.NewPlayerRepository(db)
	battles := repository.NewBattleRepository(db)

	winner := createPlayer(t, db, "settle_winner", nil)
	runnerUp := createPlayer(t, db, "settle_runner_up", nil)
	winCell := createCellWithOwner(t, db, "settle winners", winner.ID)
	loseCell := createCellWithOwner(t, db, "settle runners-up", runnerUp.ID)

	now := time.Now()
	battle, err := battles.Create(ctx, now.Add(-2*time.Hour), now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("create battle: %v", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := battles.JoinTx(ctx, tx, battle.ID, winCell.ID); err != nil {
		t.Fatalf("join winner cell: %v", err)
	}
	if err := battles.JoinTx(ctx, tx, battle.ID, loseCell.ID); err != nil {
		t.Fatalf("join runner-up cell: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit joins: %v", err)
	}
	if _, err := battles.AddScore(ctx, battle.ID, winCell.ID, 100); err != nil {
		t.Fatalf("add score: %v", err)
	}
	if _, err := battles.AddScore(ctx, battle.ID, loseCell.ID, 40); err != nil {
		t.Fatalf("add score: %v", err)
	}

	cfg := &content.GameConfig{
		BattleRewards: content.BattleRewards{First: 1000, Second: 600, Third: 300, Participant: 100},
	}
	svc := service.NewBattleService(db, redisboard.New("", "", 0), time.UTC)

	if err := svc.Settle(ctx, battle.ID, cfg); err != nil {
		t.Fatalf("first settle: %v", err)
	}

	settled, err := battles.Get(ctx, battle.ID)
	if err != nil {
		t.Fatalf("get battle: %v", err)
	}
	if !settled.RewardsDistributed {
		t.Fatal("battle not marked settled")
	}
	if len(settled.WinnerDetails) != 2 || settled.WinnerDetails[0].CellID != winCell.ID {
		t.Fatalf("winner details = %+v, want cell %d first", settled.WinnerDetails, winCell.ID)
	}

	p1, err := players.Get(ctx, winner.ID)
	if err != nil {
		t.Fatalf("get winner: %v", err)
	}
	p2, err := players.Get(ctx, runnerUp.ID)
	if err != nil {
		t.Fatalf("get runner-up: %v", err)
	}
	if p1.Balance != 1000 || p2.Balance != 600 {
		t.Fatalf("balances = %d/%d, want 1000/600", p1.Balance, p2.Balance)
	}

	// second settlement must be a complete no-op
	if err := svc.Settle(ctx, battle.ID, cfg); err != nil {
		t.Fatalf("second settle: %v", err)
	}
	again, err := battles.Get(ctx, battle.ID)
	if err != nil {
		t.Fatalf("reget battle: %v", err)
	}
	if !reflect.DeepEqual(again.WinnerDetails, settled.WinnerDetails) {
		t.Fatalf("winner details changed on resettle: %+v", again.WinnerDetails)
	}
	p1, _ = players.Get(ctx, winner.ID)
	p2, _ = players.Get(ctx, runnerUp.ID)
	if p1.Balance != 1000 || p2.Balance != 600 {
		t.Fatalf("resettle paid again: balances = %d/%d", p1.Balance, p2.Balance)
	}
}

func TestMarketService_BuyTransfersSkin(t *testing.T) {
	db := testPool(t)
	ctx := context.Background()
	players := repository.NewPlayerRepository(db)
	listings := repository.NewMarketRepository(db)

	const skinID = "market_itest_skin"
	cfg := &content.GameConfig{
		CoinSkins: []content.Skin{{ID: skinID, Name: "Itest", BoxType: content.BoxTypeCoin, Chance: 1}},
	}

	seller := createPlayer(t, db, "market_seller", nil)
	buyer := createPlayer(t, db, "market_buyer", nil)

	if _, err := players.WithPlayer(ctx, seller.ID, func(tx pgx.Tx, p *domain.Player) error {
		p.UnlockedSkins[skinID] = true
		p.CurrentSkin = skinID
		return nil
	}); err != nil {
		t.Fatalf("seed seller: %v", err)
	}

	market := service.NewMarketService(db)
	listing, err := market.List(ctx, seller.ID, skinID, 2500, cfg)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if _, err := market.Buy(ctx, seller.ID, listing.ID); !domain.IsValidation(err) {
		t.Fatalf("buying own listing = %v, want validation error", err)
	}

	bought, err := market.Buy(ctx, buyer.ID, listing.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if bought.Active {
		t.Fatal("returned listing still active")
	}

	sp, err := players.Get(ctx, seller.ID)
	if err != nil {
		t.Fatalf("get seller: %v", err)
	}
	bp, err := players.Get(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("get buyer: %v", err)
	}
	if sp.UnlockedSkins[skinID] {
		t.Fatal("seller still owns the skin")
	}
	if sp.CurrentSkin != "" {
		t.Fatalf("seller current skin = %q, want cleared", sp.CurrentSkin)
	}
	if sp.MarketCredits != 2500 {
		t.Fatalf("seller credits = %d, want 2500", sp.MarketCredits)
	}
	if !bp.UnlockedSkins[skinID] {
		t.Fatal("buyer did not receive the skin")
	}

	stored, err := listings.Get(ctx, listing.ID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if stored.Active {
		t.Fatal("listing still active in storage")
	}

	if _, err := market.Buy(ctx, buyer.ID, listing.ID); err != domain.ErrListingNotFound {
		t.Fatalf("rebuy = %v, want ErrListingNotFound", err)
	}
}

// Referral documents are read without row locks during a referrer recalc, so
// the recalc must complete even while another session holds a referral row.
func TestSocialService_RecalcReferralProfitSkipsReferralLocks(t *testing.T) {
	db := testPool(t)
	ctx := context.Background()
	players := repository.NewPlayerRepository(db)

	referrer := createPlayer(t, db, "recalc_referrer", nil)
	referral := createPlayer(t, db, "recalc_referral", &referrer.ID)

	if _, err := players.WithPlayer(ctx, referral.ID, func(tx pgx.Tx, p *domain.Player) error {
		p.BaseProfitPerHour = 1000
		p.RecomputeProfit()
		return nil
	}); err != nil {
		t.Fatalf("seed referral: %v", err)
	}

	// hold a FOR UPDATE lock on the referral row in a separate session
	hold, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("begin hold: %v", err)
	}
	defer hold.Rollback(ctx)
	if _, err := players.GetTx(ctx, hold, referral.ID); err != nil {
		t.Fatalf("lock referral: %v", err)
	}

	recalcCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	social := service.NewSocialService(db)
	if err := social.RecalcReferralProfit(recalcCtx, referrer.ID); err != nil {
		t.Fatalf("recalc blocked by a referral row lock: %v", err)
	}

	p, err := players.Get(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("get referrer: %v", err)
	}
	want := economy.ReferralProfit([]int64{1000})
	if p.ReferralProfitPerHour != want {
		t.Fatalf("referral component = %d, want %d", p.ReferralProfitPerHour, want)
	}
	if p.ProfitPerHour != p.BaseProfitPerHour+p.TasksProfitPerHour+p.ReferralProfitPerHour+p.CellProfitBonus {
		t.Fatalf("total %d not derived from components", p.ProfitPerHour)
	}
}
