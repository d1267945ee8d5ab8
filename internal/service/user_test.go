package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/metrichub/metrichub/internal/auth"
	"github.com/metrichub/metrichub/internal/repository"
	"github.com/metrichub/metrichub/internal/testutil"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	repo := repository.NewUserRepository(testutil.NewMemoryStore(t), testutil.UsersTable)
	return NewUserService(repo, nil)
}

func validCreateInput(username string) CreateUserInput {
	return CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test User",
		Password: "correct-horse-battery",
	}
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)

	user, err := svc.CreateUser(ctx, validCreateInput("alice"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated id")
	}
	if !user.IsActive {
		t.Error("is_active should default to true")
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct-horse-battery" {
		t.Error("password must be stored hashed")
	}
	ok, err := auth.VerifyPassword("correct-horse-battery", user.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestUserService_CreateUserValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)

	cases := []struct {
		name    string
		mutate  func(*CreateUserInput)
		wantErr error
	}{
		{
			name:    "username too short",
			mutate:  func(in *CreateUserInput) { in.Username = "ab" },
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "username too long",
			mutate:  func(in *CreateUserInput) { in.Username = strings.Repeat("x", 51) },
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "malformed email",
			mutate:  func(in *CreateUserInput) { in.Email = "not-an-email" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email with display name",
			mutate:  func(in *CreateUserInput) { in.Email = "Alice <alice@example.com>" },
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "full name too long",
			mutate:  func(in *CreateUserInput) { in.FullName = strings.Repeat("n", 101) },
			wantErr: ErrInvalidFullName,
		},
		{
			name:    "password too short",
			mutate:  func(in *CreateUserInput) { in.Password = "short" },
			wantErr: ErrInvalidPassword,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			input := validCreateInput("validuser")
			tc.mutate(&input)
			_, err := svc.CreateUser(ctx, input)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("CreateUser error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUserService_CreateUserConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)

	if _, err := svc.CreateUser(ctx, validCreateInput("taken")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := svc.CreateUser(ctx, validCreateInput("taken"))
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate username error = %v, want ErrUsernameExists", err)
	}

	input := validCreateInput("someoneelse")
	input.Email = "taken@example.com"
	_, err = svc.CreateUser(ctx, input)
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email error = %v, want ErrEmailExists", err)
	}
}

func TestUserService_CreateUserExplicitInactive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)

	inactive := false
	input := validCreateInput("sleeper")
	input.IsActive = &inactive

	user, err := svc.CreateUser(ctx, input)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.IsActive {
		t.Error("expected is_active false when explicitly set")
	}
}

func TestUserService_GetUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)
	created, err := svc.CreateUser(ctx, validCreateInput("bob"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := svc.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "bob" {
		t.Errorf("username = %q, want bob", got.Username)
	}

	if _, err := svc.GetUser(ctx, "no-such-id"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	byName, err := svc.GetUserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("GetUserByUsername id = %q, want %q", byName.ID, created.ID)
	}
	if _, err := svc.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)
	created, err := svc.CreateUser(ctx, validCreateInput("carol"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	newName := "Carol Updated"
	updated, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{FullName: &newName})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.FullName != newName {
		t.Errorf("full name = %q, want %q", updated.FullName, newName)
	}
	if updated.Username != "carol" {
		t.Errorf("username changed unexpectedly: %q", updated.Username)
	}

	badEmail := "nope"
	if _, err := svc.UpdateUser(ctx, created.ID, UpdateUserInput{Email: &badEmail}); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}

	if _, err := svc.UpdateUser(ctx, "no-such-id", UpdateUserInput{FullName: &newName}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)
	created, err := svc.CreateUser(ctx, validCreateInput("dave"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if err := svc.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.GetUser(ctx, created.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound after delete, got %v", err)
	}

	// Unknown ids delete without error
	if err := svc.DeleteUser(ctx, "no-such-id"); err != nil {
		t.Errorf("delete of unknown id returned error: %v", err)
	}
}

func TestUserService_ListUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUserService(t)
	for _, name := range []string{"list1", "list2", "list3"} {
		if _, err := svc.CreateUser(ctx, validCreateInput(name)); err != nil {
			t.Fatalf("CreateUser(%s): %v", name, err)
		}
	}

	page, err := svc.ListUsers(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(page.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(page.Users))
	}

	rest, err := svc.ListUsers(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListUsers offset: %v", err)
	}
	if len(rest.Users) != 1 {
		t.Errorf("expected 1 user at offset 2, got %d", len(rest.Users))
	}
	if rest.TotalCount != 3 {
		t.Errorf("total = %d, want 3", rest.TotalCount)
	}
}
