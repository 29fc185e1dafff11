package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"shopledger/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Email] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, email string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[email]
	user.Password = password
	s.users[email] = user
	s.updates++
	return nil
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"owner@example.com": {
				Email:     "owner@example.com",
				Password:  "owner123",
				Role:      domain.RoleAdmin,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, []string{"owner@example.com"}, store)
	_, err := manager.Login(domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "owner123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Password == "owner123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
}

func TestAdminAllowListOverridesStoredRole(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"owner@example.com": {
				Email:     "owner@example.com",
				Password:  "owner123",
				Role:      domain.RoleStaff,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, []string{"owner@example.com"}, store)
	resp, err := manager.Login(domain.LoginRequest{
		Email:    "owner@example.com",
		Password: "owner123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Role != domain.RoleAdmin {
		t.Fatalf("expected allow-listed account to log in as admin, got %q", resp.Role)
	}
}

func TestCreateStaffStoresPasswordHash(t *testing.T) {
	store := &userStoreStub{users: map[string]domain.UserAccount{}}

	manager := NewAuthManager("test-secret", time.Hour, nil, store)
	staff, err := manager.CreateStaff(domain.StaffCreateRequest{
		Email:    "counter@example.com",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if staff.Email != "counter@example.com" || staff.Role != domain.RoleStaff {
		t.Fatalf("unexpected staff account: %+v", staff)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range users {
		if users[i].Email == "counter@example.com" {
			found = &users[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected staff account to be saved")
	}
	if found.Password == "pass1234" {
		t.Fatalf("expected staff password to be hashed")
	}
	if !strings.HasPrefix(found.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.Password)
	}

	_, err = manager.Login(domain.LoginRequest{
		Email:    "counter@example.com",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("login with hashed staff password failed: %v", err)
	}
}

func TestCreateStaffRejectsBadInput(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, nil, &userStoreStub{})

	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Email: "not-an-email", Password: "pass1234"}); err == nil {
		t.Fatalf("expected email without @ to be rejected")
	}
	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Email: "a@b.com", Password: "short"}); err == nil {
		t.Fatalf("expected short password to be rejected")
	}

	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Email: "dup@b.com", Password: "pass1234"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Email: "DUP@b.com", Password: "pass1234"}); err == nil {
		t.Fatalf("expected duplicate email to be rejected")
	}
}

func TestListStaffExcludesAllowListedAdmins(t *testing.T) {
	store := &userStoreStub{users: map[string]domain.UserAccount{}}
	manager := NewAuthManager("test-secret", time.Hour, []string{"owner@example.com"}, store)

	if err := store.CreateUser(context.Background(), domain.UserAccount{
		Email: "owner@example.com", Password: "x", Role: domain.RoleStaff, Active: true,
	}); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	if _, err := manager.CreateStaff(domain.StaffCreateRequest{Email: "counter@example.com", Password: "pass1234"}); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	staff := manager.ListStaff()
	if len(staff) != 1 || staff[0].Email != "counter@example.com" {
		t.Fatalf("unexpected staff list: %+v", staff)
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, nil, nil)

	token, err := manager.sign("counter@example.com", domain.RoleStaff, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	actor, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if actor.Email != "counter@example.com" || actor.Role != domain.RoleStaff {
		t.Fatalf("unexpected actor: %+v", actor)
	}

	other := NewAuthManager("different-secret", time.Hour, nil, nil)
	if _, err := other.ParseToken(token); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, nil, nil)

	token, err := manager.sign("counter@example.com", domain.RoleStaff, time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
