// Command keygen bootstraps an API key directly in the database. The raw key
// is printed once and cannot be recovered afterwards.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kiranshivaraju/racetime/internal/apikey"
	"github.com/kiranshivaraju/racetime/internal/config"
	"github.com/kiranshivaraju/racetime/internal/store"
	"github.com/kiranshivaraju/racetime/pkg/models"
)

// keyCreator is the slice of store.Store the command needs.
type keyCreator interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	name := flag.String("name", "bootstrap-admin", "key name")
	scopes := flag.String("scopes", apikey.ScopeRead+","+apikey.ScopeAdmin, "comma-separated scopes")
	flag.Parse()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := store.Connect(ctx, config.DatabaseConfig{
		URL:             dbURL,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		slog.Error("connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := createKey(ctx, store.NewPostgresStore(pool), os.Stdout, *name, splitScopes(*scopes), bcrypt.DefaultCost); err != nil {
		slog.Error("create key", "error", err)
		pool.Close()
		os.Exit(1)
	}
}

func createKey(ctx context.Context, s keyCreator, out io.Writer, name string, scopes []string, cost int) error {
	raw, key, err := apikey.Generate(name, scopes, cost)
	if err != nil {
		return err
	}
	if err := s.CreateAPIKey(ctx, key); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return fmt.Errorf("key id collision, retry: %w", err)
		}
		return err
	}

	fmt.Fprintf(out, "id:     %s\n", key.ID)
	fmt.Fprintf(out, "scopes: %s\n", strings.Join(key.Scopes, ","))
	fmt.Fprintf(out, "key:    %s\n", raw)
	return nil
}

func splitScopes(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
