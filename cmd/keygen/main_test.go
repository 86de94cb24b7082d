package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kiranshivaraju/racetime/internal/apikey"
	"github.com/kiranshivaraju/racetime/internal/store"
	"github.com/kiranshivaraju/racetime/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeCreator struct {
	keys []*models.APIKey
	err  error
}

func (f *fakeCreator) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func TestCreateKey_PrintsRawKeyOnce(t *testing.T) {
	fc := &fakeCreator{}
	var out bytes.Buffer

	err := createKey(context.Background(), fc, &out, "ops", []string{"read", "admin"}, bcrypt.MinCost)
	require.NoError(t, err)
	require.Len(t, fc.keys, 1)

	stored := fc.keys[0]
	assert.Equal(t, "ops", stored.Name)
	assert.Equal(t, []string{"read", "admin"}, stored.Scopes)

	var raw string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "key:") {
			raw = strings.TrimSpace(strings.TrimPrefix(line, "key:"))
		}
	}
	require.NotEmpty(t, raw)
	assert.True(t, strings.HasPrefix(raw, apikey.Prefix))
	assert.Equal(t, raw[:apikey.PrefixLen], stored.KeyPrefix)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.KeyHash), []byte(raw)))
	assert.NotContains(t, out.String(), stored.KeyHash)
}

func TestCreateKey_InvalidScope(t *testing.T) {
	fc := &fakeCreator{}
	err := createKey(context.Background(), fc, &bytes.Buffer{}, "ops", []string{"root"}, bcrypt.MinCost)
	assert.ErrorIs(t, err, apikey.ErrInvalidScope)
	assert.Empty(t, fc.keys)
}

func TestCreateKey_StoreError(t *testing.T) {
	fc := &fakeCreator{err: store.ErrDuplicateKey}
	var out bytes.Buffer

	err := createKey(context.Background(), fc, &out, "ops", nil, bcrypt.MinCost)
	assert.True(t, errors.Is(err, store.ErrDuplicateKey))
	assert.Empty(t, out.String())
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"read", "admin"}, splitScopes(" read, ,admin "))
	assert.Nil(t, splitScopes(""))
}
