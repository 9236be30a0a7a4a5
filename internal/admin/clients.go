package admin

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/openrange/backend/internal/models"
)

// Scopes granted to API clients.
const (
	ScopeShots = "shots"
	ScopeJobs  = "jobs"
	ScopeAdmin = "admin"
)

var (
	ErrClientNotFound = errors.New("api client not found")
	ErrInvalidKey     = errors.New("invalid api key")
	ErrClientDisabled = errors.New("api client disabled")
)

// GetClientByName retrieves an API client by name
func GetClientByName(db *sqlx.DB, name string) (*models.APIClient, error) {
	var c models.APIClient
	err := db.Get(&c, `SELECT id, name, key_hash, scopes, is_active, created_at, last_used_at FROM api_clients WHERE name=$1`, name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// VerifyKey checks if the provided key matches the stored hash
func VerifyKey(hashedKey, plainKey string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(plainKey)) == nil
}

// HashKey bcrypt-hashes an API key for storage.
func HashKey(plainKey string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plainKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	return string(h), nil
}

// GenerateKey returns a random API key.
func GenerateKey() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "ork_" + hex.EncodeToString(b), nil
}

// CreateClient creates or re-keys an API client (used for seeding)
func CreateClient(db *sqlx.DB, name, plainKey string, scopes []string) error {
	hashed, err := HashKey(plainKey)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO api_clients (name, key_hash, scopes, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, NOW())
		ON CONFLICT (name) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			scopes = EXCLUDED.scopes,
			is_active = TRUE
	`, name, hashed, pq.Array(scopes))
	return err
}

// Authenticate validates a name + key combination
func Authenticate(db *sqlx.DB, name, key string) (*models.APIClient, error) {
	c, err := GetClientByName(db, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[AUTH] No api client named %s", name)
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !c.IsActive {
		return nil, ErrClientDisabled
	}
	if !VerifyKey(c.KeyHash, key) {
		log.Printf("[AUTH] Key verification failed for client %s", name)
		return nil, ErrInvalidKey
	}

	if _, err := db.Exec(`UPDATE api_clients SET last_used_at=NOW() WHERE id=$1`, c.ID); err != nil {
		log.Printf("[AUTH] Failed to touch client %s: %v", name, err)
	}
	return c, nil
}

// HasScope reports whether scopes grants want. The admin scope grants everything.
func HasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want || s == ScopeAdmin {
			return true
		}
	}
	return false
}
