package database

import (
	"context"
	"errors"
	"testing"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := service.CreateUser(context.Background(), "user2", "Other User", "test@example.com", testAddress)
	if !errors.Is(err, ErrUserExists) {
		t.Fatalf("Expected ErrUserExists, got %v", err)
	}
}

func TestGetUserById(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := service.GetUserById(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if user.Email != "test@example.com" || user.StellarAddress != testAddress {
		t.Errorf("Unexpected user: %+v", user)
	}

	if _, err := service.GetUserById(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByEmailAndList(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user, err := service.GetUserByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.Id != "user1" {
		t.Errorf("Expected user1, got %s", user.Id)
	}

	users, err := service.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("Expected 1 user, got %d", len(users))
	}
}
