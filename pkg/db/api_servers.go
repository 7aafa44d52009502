package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
)

var ErrAPIServerNotFound = errors.New("api server config not found")

// APIServer is the HTTP listen configuration of a profile.
type APIServer struct {
	ProfileID int64
	Host      string
	Port      int
}

// Address returns the API server listen address (host:port).
func (a *APIServer) Address() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// APIServerStore reads and updates API server configuration.
type APIServerStore interface {
	Get(ctx context.Context, profileID int64) (*APIServer, error)
	Update(ctx context.Context, a *APIServer) error
}

// APIServers returns an APIServerStore for this database.
func (db *DB) APIServers() APIServerStore {
	return &apiServerStore{db: db}
}

type apiServerStore struct {
	db *DB
}

func (s *apiServerStore) Get(ctx context.Context, profileID int64) (*APIServer, error) {
	a := &APIServer{ProfileID: profileID}
	err := s.db.QueryRowContext(ctx,
		`SELECT host, port FROM api_servers WHERE profile_id = ?`, profileID,
	).Scan(&a.Host, &a.Port)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAPIServerNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *apiServerStore) Update(ctx context.Context, a *APIServer) error {
	if a.Port <= 0 || a.Port > 65535 {
		return fmt.Errorf("invalid API port %d", a.Port)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO api_servers (profile_id, host, port) VALUES (?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET host = excluded.host, port = excluded.port
	`, a.ProfileID, a.Host, a.Port)
	return err
}
