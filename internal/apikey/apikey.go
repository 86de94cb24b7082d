// Package apikey mints API keys for the protected and admin endpoints.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/racetime/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Prefix starts every raw key.
	Prefix = "rt_"
	// PrefixLen is how many leading characters are stored in clear for lookup.
	PrefixLen = 8

	ScopeRead  = "read"
	ScopeAdmin = "admin"
)

var ErrInvalidName = errors.New("key name is required")
var ErrInvalidScope = errors.New("unknown scope")

var knownScopes = map[string]bool{ScopeRead: true, ScopeAdmin: true}

// Generate creates a new key. It returns the raw key, which is shown once, and
// the record to persist. An empty scope list defaults to read.
func Generate(name string, scopes []string, cost int) (string, *models.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, ErrInvalidName
	}
	if len(scopes) == 0 {
		scopes = []string{ScopeRead}
	}
	for _, s := range scopes {
		if !knownScopes[s] {
			return "", nil, fmt.Errorf("%w: %q", ErrInvalidScope, s)
		}
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("read random bytes: %w", err)
	}
	raw := Prefix + hex.EncodeToString(buf)

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), cost)
	if err != nil {
		return "", nil, fmt.Errorf("hash key: %w", err)
	}

	now := time.Now().UTC()
	return raw, &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   string(hash),
		KeyPrefix: raw[:PrefixLen],
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
