package service

import (
	"testing"
	"time"

	"clicker_backend/internal/domain"
)

func TestMaybeDailyReset(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatal(err)
	}
	s := &ProgressionService{loc: loc}

	dirty := func(reset time.Time) *domain.Player {
		p := domain.NewPlayer(1, reset)
		p.Daily.CompletedTasks["t1"] = true
		p.Daily.CompletedSpecialTasks["s1"] = true
		p.Daily.DailyTaps = 777
		p.Daily.ComboClaimed = true
		p.Daily.CipherClaimed = true
		p.Daily.UpgradedToday["u1"] = true
		p.Daily.BoostPurchases["tap_guru"] = 2
		p.Daily.LastReset = reset
		return p
	}

	// 23:30 and 00:30 Moscow time straddle the local midnight
	before := time.Date(2026, 3, 1, 23, 30, 0, 0, loc)
	after := time.Date(2026, 3, 2, 0, 30, 0, 0, loc)

	t.Run("new day zeroes the cycle", func(t *testing.T) {
		p := dirty(before)
		s.maybeDailyReset(p, after)

		if len(p.Daily.CompletedTasks) != 0 || p.Daily.DailyTaps != 0 ||
			p.Daily.ComboClaimed || p.Daily.CipherClaimed ||
			len(p.Daily.UpgradedToday) != 0 || len(p.Daily.BoostPurchases) != 0 {
			t.Fatalf("daily cycle not zeroed: %+v", p.Daily)
		}
		if !p.Daily.LastReset.Equal(after) {
			t.Fatalf("last reset = %v, want %v", p.Daily.LastReset, after)
		}
	})

	t.Run("special tasks survive the reset", func(t *testing.T) {
		p := dirty(before)
		s.maybeDailyReset(p, after)
		if !p.Daily.CompletedSpecialTasks["s1"] {
			t.Fatal("one-time special task was wiped by the daily reset")
		}
	})

	t.Run("same calendar day is a no-op", func(t *testing.T) {
		p := dirty(before)
		sameNight := time.Date(2026, 3, 1, 23, 59, 0, 0, loc)
		s.maybeDailyReset(p, sameNight)
		if p.Daily.DailyTaps != 777 {
			t.Fatal("reset fired within the same day")
		}
	})

	t.Run("idempotent after first reset", func(t *testing.T) {
		p := dirty(before)
		s.maybeDailyReset(p, after)
		p.Daily.DailyTaps = 5
		s.maybeDailyReset(p, after.Add(time.Hour))
		if p.Daily.DailyTaps != 5 {
			t.Fatal("second reset on the same day wiped progress")
		}
	})

	t.Run("boundary follows the configured timezone", func(t *testing.T) {
		// 22:00 UTC Mar 1 is already 01:00 Mar 2 in Moscow
		p := dirty(before)
		utcEvening := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
		s.maybeDailyReset(p, utcEvening)
		if p.Daily.DailyTaps != 0 {
			t.Fatal("reset must key off the configured timezone, not UTC")
		}
	})
}

func TestSameDay(t *testing.T) {
	s := &ProgressionService{loc: time.UTC}

	a := time.Date(2026, 5, 10, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 5, 10, 23, 59, 59, 0, time.UTC)
	if !s.sameDay(a, b) {
		t.Fatal("same calendar day reported as different")
	}

	c := time.Date(2026, 5, 11, 0, 0, 0, 0, time.UTC)
	if s.sameDay(b, c) {
		t.Fatal("midnight crossing reported as same day")
	}
}
