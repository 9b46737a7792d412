package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/volunteer-scheduler/internal/audit"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/auth"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/domain/identity"
	"github.com/BruksfildServices01/volunteer-scheduler/internal/infra/memory"
)

func newAccounts(t *testing.T) (*Accounts, *memory.Store, *auth.Tokens) {
	t.Helper()

	store := memory.New()
	d := audit.NewDispatcher(audit.New(store), zerolog.Nop())
	t.Cleanup(func() { _ = d.Close(context.Background()) })

	tokens := auth.NewTokens("test-secret", time.Hour)
	return New(store, tokens, d, zerolog.Nop()), store, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	uc, store, tokens := newAccounts(t)
	ctx := context.Background()

	s, err := uc.Register(ctx, RegisterInput{
		Email:    "  Alice@Example.com ",
		Username: "alice",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.User.Email != "alice@example.com" || s.User.Role != string(identity.RoleVolunteer) {
		t.Fatalf("unexpected user %+v", s.User)
	}

	actor, err := tokens.Parse(s.Token)
	if err != nil || actor.UserID != s.User.ID || actor.Role != identity.RoleVolunteer {
		t.Fatalf("token actor %+v, err %v", actor, err)
	}

	if _, err := uc.Register(ctx, RegisterInput{Email: "alice@example.com", Username: "other", Password: "x"}); !errors.Is(err, identity.ErrAlreadyExists) {
		t.Fatalf("duplicate email: got %v", err)
	}

	if _, err := uc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := uc.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}

	if _, err := uc.Login(ctx, "ALICE@example.com", "hunter22"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	u, _ := store.GetUserByID(ctx, s.User.ID)
	if u.LastLogin == nil {
		t.Fatal("login must record last_login")
	}
}

func TestRegisterOrganization(t *testing.T) {
	uc, _, tokens := newAccounts(t)
	ctx := context.Background()

	in := RegisterOrganizationInput{
		RegisterInput: RegisterInput{
			Email:    "team@riverside.org",
			Username: "riverside",
			Password: "s3cret!!",
		},
		OrganizationName: "Riverside Community Garden",
		Timezone:         "Not/AZone",
	}

	s, err := uc.RegisterOrganization(ctx, in)
	if err != nil {
		t.Fatalf("RegisterOrganization: %v", err)
	}
	if s.Organization.Slug != "riverside-community-garden" {
		t.Fatalf("slug = %q", s.Organization.Slug)
	}
	if s.Organization.Timezone == "Not/AZone" {
		t.Fatal("invalid timezone must fall back to the default")
	}

	actor, _ := tokens.Parse(s.Token)
	if actor.Role != identity.RoleOrganization || actor.OrganizationID == nil || *actor.OrganizationID != s.Organization.ID {
		t.Fatalf("token actor %+v", actor)
	}

	in.Email, in.Username = "second@riverside.org", "riverside2"
	s2, err := uc.RegisterOrganization(ctx, in)
	if err != nil {
		t.Fatalf("second organization: %v", err)
	}
	if s2.Organization.Slug != "riverside-community-garden-2" {
		t.Fatalf("second slug = %q", s2.Organization.Slug)
	}
}
