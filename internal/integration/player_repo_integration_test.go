package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clicker_backend/internal/domain"
	"clicker_backend/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

func TestPlayerRepository_CreateAndMutate(t *testing.T) {
	db := testPool(t)
	repo := repository.NewPlayerRepository(db)
	ctx := context.Background()

	u := &domain.User{
		TgID:      time.Now().UnixNano(), // unique per run
		Username:  "itest",
		FirstName: "Integration",
	}
	p, err := repo.CreateUser(ctx, u, nil)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if p.Energy != domain.BaseEnergy {
		t.Fatalf("new player energy = %d, want %d", p.Energy, domain.BaseEnergy)
	}

	// read-lock-mutate-write round trip
	got, err := repo.WithPlayer(ctx, u.ID, func(tx pgx.Tx, pl *domain.Player) error {
		pl.Balance += 500
		return nil
	})
	if err != nil {
		t.Fatalf("with player: %v", err)
	}
	if got.Balance != 500 {
		t.Fatalf("balance = %d, want 500", got.Balance)
	}

	reread, err := repo.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reread.Balance != 500 {
		t.Fatalf("persisted balance = %d, want 500", reread.Balance)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, u.ID); err != domain.ErrPlayerNotFound {
		t.Fatalf("get after delete = %v, want ErrPlayerNotFound", err)
	}
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	db := testPool(t)
	outbox := repository.NewOutboxRepository(db)
	players := repository.NewPlayerRepository(db)
	ctx := context.Background()

	u := &domain.User{TgID: time.Now().UnixNano(), Username: "outbox_itest"}
	if _, err := players.CreateUser(ctx, u, nil); err != nil {
		t.Fatalf("create user: %v", err)
	}
	defer players.Delete(ctx, u.ID)

	tx, err := db.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := outbox.EnqueueTx(ctx, tx, domain.RecalcReferral, u.ID); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	events, err := outbox.FetchPending(ctx, 1000, 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	var found *domain.RecalcEvent
	for i := range events {
		if events[i].TargetID == u.ID && events[i].Kind == domain.RecalcReferral {
			found = &events[i]
			break
		}
	}
	if found == nil {
		t.Fatal("enqueued event not returned by FetchPending")
	}

	if err := outbox.MarkDone(ctx, found.ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	events, err = outbox.FetchPending(ctx, 1000, 5)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	for _, ev := range events {
		if ev.ID == found.ID {
			t.Fatal("done event still pending")
		}
	}
}
