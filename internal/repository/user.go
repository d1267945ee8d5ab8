package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/metrichub/metrichub/internal/model"
	"github.com/metrichub/metrichub/internal/store"
)

// ErrUserNotFound indicates the user id (or alternate key) matched no record.
var ErrUserNotFound = errors.New("user not found")

// User table schema.
const (
	UserKeyAttr   = "user_id"
	UsernameIndex = "username-index"
	EmailIndex    = "email-index"
)

// UserRepository provides store access for user records.
type UserRepository struct {
	store store.Store
	table string
}

// NewUserRepository creates a UserRepository over the given table.
func NewUserRepository(s store.Store, table string) *UserRepository {
	return &UserRepository{store: s, table: table}
}

// Get retrieves a user by id.
func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	item, err := r.store.GetItem(ctx, r.table, store.StringKey(UserKeyAttr, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if item == nil {
		return nil, ErrUserNotFound
	}
	return decodeUser(item)
}

// GetByUsername retrieves the first user matching the username index.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getByIndex(ctx, UsernameIndex, "username", username)
}

// GetByEmail retrieves the first user matching the email index.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByIndex(ctx, EmailIndex, "email", email)
}

func (r *UserRepository) getByIndex(ctx context.Context, index, attr, value string) (*model.User, error) {
	items, err := r.store.Query(ctx, r.table, index, attr,
		&types.AttributeValueMemberS{Value: value}, false, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", index, err)
	}
	if len(items) == 0 {
		return nil, ErrUserNotFound
	}
	return decodeUser(items[0])
}

// CreateUserInput holds the fields the caller supplies for a new user.
type CreateUserInput struct {
	Username     string
	Email        string
	FullName     string
	IsActive     bool
	PasswordHash string
}

// Create assigns a fresh id and timestamps, persists the record, and
// returns the stored representation. Uniqueness of username/email is
// the caller's concern; a race between that check and this write is
// possible and unresolved by design.
func (r *UserRepository) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		IsActive:     input.IsActive,
		PasswordHash: input.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	item, err := marshalItem(user.ToStoredUser())
	if err != nil {
		return nil, err
	}
	if err := r.store.PutItem(ctx, r.table, item); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// UpdateUserInput holds the partial update; only non-nil fields change.
type UpdateUserInput struct {
	Username     *string
	Email        *string
	FullName     *string
	IsActive     *bool
	PasswordHash *string
}

// Update applies the supplied fields and refreshes updated_at, then
// re-reads the id to produce the result. A missing record is detected
// only by that re-read coming back absent; the update itself is not
// rejected up front. A delete racing the update can therefore surface
// as ErrUserNotFound even though the write landed (known gap).
func (r *UserRepository) Update(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	set := store.Item{
		"updated_at": &types.AttributeValueMemberS{
			Value: model.FormatTimestamp(time.Now().UTC().Truncate(time.Millisecond)),
		},
	}
	if input.Username != nil {
		set["username"] = &types.AttributeValueMemberS{Value: *input.Username}
	}
	if input.Email != nil {
		set["email"] = &types.AttributeValueMemberS{Value: *input.Email}
	}
	if input.FullName != nil {
		set["full_name"] = &types.AttributeValueMemberS{Value: *input.FullName}
	}
	if input.IsActive != nil {
		set["is_active"] = &types.AttributeValueMemberBOOL{Value: *input.IsActive}
	}
	if input.PasswordHash != nil {
		set["password_hash"] = &types.AttributeValueMemberS{Value: *input.PasswordHash}
	}

	if _, err := r.store.UpdateItem(ctx, r.table, store.StringKey(UserKeyAttr, id), set); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return r.Get(ctx, id)
}

// Delete removes a user unconditionally. Deleting an id that never
// existed succeeds.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteItem(ctx, r.table, store.StringKey(UserKeyAttr, id)); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// UserPage is one window of the user list.
type UserPage struct {
	Users      []*model.User
	TotalCount int
	Limit      int
	Offset     int
}

// List returns a limit/offset window over the full user table.
//
// With a zero offset the limit is pushed into a single scan call and
// the reported total is whatever that call returned - a known
// approximation, not the true table size. A nonzero offset retrieves
// the entire table and slices it in memory, which is O(table size)
// per call.
func (r *UserRepository) List(ctx context.Context, limit, offset int) (*UserPage, error) {
	page := &UserPage{Limit: limit, Offset: offset}

	if offset == 0 {
		items, err := r.store.Scan(ctx, r.table, nil, int32(limit))
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		users, err := decodeUsers(items)
		if err != nil {
			return nil, err
		}
		page.Users = users
		page.TotalCount = len(users)
		return page, nil
	}

	items, err := r.store.Scan(ctx, r.table, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := decodeUsers(items)
	if err != nil {
		return nil, err
	}
	page.Users = pageWindow(users, limit, offset)
	page.TotalCount = len(users)
	return page, nil
}

func decodeUser(item store.Item) (*model.User, error) {
	var stored model.StoredUser
	if err := attributevalue.UnmarshalMap(item, &stored); err != nil {
		return nil, fmt.Errorf("decode user item: %w", err)
	}
	return stored.ToUser(), nil
}

func decodeUsers(items []store.Item) ([]*model.User, error) {
	users := make([]*model.User, 0, len(items))
	for _, item := range items {
		user, err := decodeUser(item)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
