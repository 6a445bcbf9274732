package store

import (
	"testing"
	"time"
)

func TestInviteLifecycle(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	p := seedPerson(t, db, u.ID, "Friend", "friend")

	now := time.Now()
	inv, err := db.CreateInvite(u.ID, p.ID, now)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}
	if len(inv.Token) != 12 {
		t.Errorf("token %q, want 12 chars", inv.Token)
	}
	if inv.ExpiresAt != now.Add(7*24*time.Hour).UnixMilli() {
		t.Errorf("expires_at = %d, want 7 days out", inv.ExpiresAt)
	}

	accepted, err := db.AcceptInvite(inv.Token, "tg-9999", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if accepted.Status != "accepted" || accepted.InviteeTelegramID != "tg-9999" {
		t.Errorf("accepted = %+v", accepted)
	}

	// Person is now connected
	fresh, _ := db.GetPerson(p.ID)
	if !fresh.Connected || fresh.TelegramUserID != "tg-9999" {
		t.Errorf("person = %+v, want connected to tg-9999", fresh)
	}

	// Token no longer pending
	again, err := db.AcceptInvite(inv.Token, "tg-other", now)
	if err != nil {
		t.Fatalf("AcceptInvite again: %v", err)
	}
	if again != nil {
		t.Error("expected nil for non-pending token")
	}
}

func TestAcceptInviteExpired(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	p := seedPerson(t, db, u.ID, "Late", "friend")

	now := time.Now()
	inv, _ := db.CreateInvite(u.ID, p.ID, now)

	if _, err := db.AcceptInvite(inv.Token, "tg-9999", now.Add(8*24*time.Hour)); err == nil {
		t.Error("expected error for expired invite")
	}
}

func TestDeclineInvite(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	p := seedPerson(t, db, u.ID, "No", "friend")

	inv, _ := db.CreateInvite(u.ID, p.ID, time.Now())
	if err := db.DeclineInvite(inv.Token); err != nil {
		t.Fatalf("DeclineInvite: %v", err)
	}

	pending, _ := db.GetPendingInvite(inv.Token)
	if pending != nil {
		t.Error("declined invite should not be pending")
	}
}
