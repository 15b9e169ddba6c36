package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/speakwise/speakwise/internal/domain/user"
	"github.com/speakwise/speakwise/internal/repo/memory"
)

func TestCreateEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsersRepo()

	if _, err := repo.Create(ctx, "a@x.com", "alice", "hash"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		username string
	}{
		{"duplicate username", "other@x.com", "alice"},
		{"duplicate email", "a@x.com", "other"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tc.email, tc.username, "hash")
			if !errors.Is(err, user.ErrExists) {
				t.Fatalf("got %v, want user.ErrExists", err)
			}
		})
	}
}

func TestLookupsByIDUsernameAndEither(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsersRepo()

	created, err := repo.Create(ctx, "a@x.com", "alice", "hash")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil || byID.Username != "alice" {
		t.Fatalf("GetByID: got (%+v, %v)", byID, err)
	}

	byName, err := repo.GetByUsername(ctx, "alice")
	if err != nil || byName.ID != created.ID {
		t.Fatalf("GetByUsername: got (%+v, %v)", byName, err)
	}

	byEmail, err := repo.GetByUsernameOrEmail(ctx, "", "a@x.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("GetByUsernameOrEmail by email: got (%+v, %v)", byEmail, err)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("GetByID miss: got %v, want user.ErrNotFound", err)
	}
}

func TestUpdatePartialSemantics(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsersRepo()

	created, err := repo.Create(ctx, "a@x.com", "alice", "hash-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// only email supplied: username and hash stay put
	updated, err := repo.Update(ctx, created.ID, user.Changes{Email: "new@x.com"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Username != "alice" || updated.Email != "new@x.com" || updated.PasswordHash != "hash-1" {
		t.Fatalf("partial update wrong result: %+v", updated)
	}

	if _, err := repo.Update(ctx, "missing", user.Changes{Email: "x@x.com"}); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("update of missing user: got %v, want user.ErrNotFound", err)
	}
}

func TestUpdateRejectsTakenUsername(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUsersRepo()

	if _, err := repo.Create(ctx, "a@x.com", "alice", "hash"); err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := repo.Create(ctx, "b@x.com", "bob", "hash")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	if _, err := repo.Update(ctx, bob.ID, user.Changes{Username: "alice"}); !errors.Is(err, user.ErrExists) {
		t.Fatalf("rename onto taken username: got %v, want user.ErrExists", err)
	}
}
