package database

import (
	"context"
	"path/filepath"
	"testing"

	"stellarcade-backend-go/internal/config"

	"go.uber.org/zap"
)

const testAddress = "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7"

func setupTestDB(t *testing.T) (*Service, func()) {
	t.Helper()

	service, err := NewService(context.Background(), zap.NewNop(), config.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := service.CreateUser(context.Background(), "user1", "Test User", "test@example.com", testAddress); err != nil {
		t.Fatalf("Failed to insert test user: %v", err)
	}

	return service, service.Close
}
