package repository

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/ticketapp/internal/domain"
	"github.com/spec-kit/ticketapp/internal/persistence"
)

const browserUsers = `[
  {"id":"1714557600000","name":"Ann","email":"ann@x.com","password":"password1","createdAt":"2024-05-01T10:00:00.000Z"},
  {"id":"1714557600001","name":"Bob","email":"bob@x.com","password":"hunter222","createdAt":"2024-05-01T10:00:00.001Z",
   "tickets":[{"id":"1714557700000","title":"Printer broken","status":"open","createdAt":"2024-05-01T10:01:40.000Z"},
              {"id":"1714557700001","title":"VPN","description":"drops hourly","status":"closed","createdAt":"2024-05-01T10:01:40.001Z","updatedAt":"2024-05-02T08:00:00.000Z"}]}
]`

func TestDecodeUsers_BrowserLayout(t *testing.T) {
	users, err := DecodeUsers([]byte(browserUsers))
	if err != nil {
		t.Fatalf("DecodeUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].Tickets != nil {
		t.Errorf("user without tickets field decoded Tickets = %v, want nil", users[0].Tickets)
	}
	vpn := users[1].Tickets[1]
	if vpn.Description != "drops hourly" || vpn.Status != domain.TicketStatusClosed || vpn.UpdatedAt == nil {
		t.Errorf("unexpected ticket %+v", vpn)
	}
}

func TestEncodeUsers_RoundTripStable(t *testing.T) {
	users, err := DecodeUsers([]byte(browserUsers))
	if err != nil {
		t.Fatal(err)
	}
	first, err := EncodeUsers(users)
	if err != nil {
		t.Fatal(err)
	}
	again, err := DecodeUsers(first)
	if err != nil {
		t.Fatal(err)
	}
	second, err := EncodeUsers(again)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("serialize-deserialize-serialize not stable:\n%s\n%s", first, second)
	}
}

func TestEncodeUsers_NilIsEmptyArray(t *testing.T) {
	out, err := EncodeUsers(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "[]" {
		t.Errorf("EncodeUsers(nil) = %s, want []", out)
	}
}

func TestDirectoryRepository_LoadEmpty(t *testing.T) {
	repo := NewDirectoryRepository(persistence.NewMemory())

	dir, err := repo.Load(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(dir.Users) != 0 || dir.Revision != 0 {
		t.Errorf("Load() = %+v, want empty directory at revision 0", dir)
	}
}

func TestDirectoryRepository_SaveDetectsConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewDirectoryRepository(persistence.NewMemory())

	tabA, _ := repo.Load(ctx, "p1")
	tabB, _ := repo.Load(ctx, "p1")

	tabA.Users = append(tabA.Users, domain.User{ID: "1", Email: "a@x.com", CreatedAt: time.Unix(0, 0).UTC()})
	if err := repo.Save(ctx, "p1", tabA); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}
	if tabA.Revision != 1 {
		t.Errorf("Revision after save = %d, want 1", tabA.Revision)
	}

	tabB.Users = append(tabB.Users, domain.User{ID: "2", Email: "b@x.com"})
	if err := repo.Save(ctx, "p1", tabB); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale Save() error = %v, want ErrConflict", err)
	}

	dir, _ := repo.Load(ctx, "p1")
	if len(dir.Users) != 1 || dir.Users[0].Email != "a@x.com" {
		t.Errorf("directory after conflict = %+v", dir.Users)
	}
}

func TestDirectoryRepository_ProfilesIsolated(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemory()
	repo := NewDirectoryRepository(store)

	if err := repo.Replace(ctx, "p1", []domain.User{{ID: "1", Email: "a@x.com"}}); err != nil {
		t.Fatal(err)
	}
	other, err := repo.Load(ctx, "p2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other.Users) != 0 {
		t.Errorf("profile p2 sees %d users from p1", len(other.Users))
	}
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewMemory()
	repo := NewSessionRepository(store)

	got, err := repo.Get(ctx, "p1")
	if err != nil || got != nil {
		t.Fatalf("Get() on empty profile = %v, %v; want nil, nil", got, err)
	}

	session := domain.Session{ID: "1", Email: "ann@x.com", Name: "Ann", LoggedInAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	if err := repo.Put(ctx, "p1", session); err != nil {
		t.Fatal(err)
	}
	got, err = repo.Get(ctx, "p1")
	if err != nil || got == nil {
		t.Fatalf("Get() = %+v, %v", got, err)
	}
	if got.ID != session.ID || got.Email != session.Email || got.Name != session.Name || !got.LoggedInAt.Equal(session.LoggedInAt) {
		t.Errorf("Get() = %+v, want %+v", got, session)
	}

	rec, _ := store.Get(ctx, persistence.ProfileKey("p1", SessionKey))
	if bytes.Contains(rec.Value, []byte("password")) {
		t.Errorf("session record leaks a password field: %s", rec.Value)
	}

	if err := repo.Delete(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Get(ctx, "p1")
	if got != nil {
		t.Errorf("Get() after Delete = %+v, want nil", got)
	}
}
