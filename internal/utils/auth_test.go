package utils

import (
	"testing"
	"time"

	"github.com/xelth-com/mfgtrack/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestSessionToken(t *testing.T) {
	secret := "test-secret-key-12345"
	user := &models.User{
		ID:       "uuid-1234",
		Username: "planner",
		Role:     models.RolePlanningEngineer,
	}

	token, err := GenerateSessionToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("Token should not be empty")
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}
	if SessionUserID(claims) != user.ID {
		t.Errorf("Expected user ID %s, got %v", user.ID, claims["id"])
	}
	if claims["role"] != string(user.Role) {
		t.Errorf("Expected role %s, got %v", user.Role, claims["role"])
	}

	// Wrong key
	if _, err := ValidateToken(token, "wrong-key"); err == nil {
		t.Error("Validation should fail with wrong key")
	}

	// Expired
	expired, err := GenerateSessionToken(user, secret, -time.Minute)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if _, err := ValidateToken(expired, secret); err == nil {
		t.Error("Validation should fail for expired token")
	}
}
