package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jonco5555/vault/setup"
)

// SQLStore is the production Store, backed by the pure-Go modernc.org/sqlite
// driver so the manager binary stays a single static executable with no
// cgo dependency on libsqlite3.
type SQLStore struct {
	db *sql.DB
}

// Open creates (or reopens) the sqlite database at dsn and creates every
// table if it does not already exist.
func Open(dsn string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", dsn, err)
	}
	s := &SQLStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			public_key BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vault (
			user_id TEXT NOT NULL,
			secret_id TEXT NOT NULL,
			secret BLOB NOT NULL,
			PRIMARY KEY (user_id, secret_id)
		)`,
		`CREATE TABLE IF NOT EXISTS servers (
			container_id TEXT PRIMARY KEY,
			type INTEGER NOT NULL,
			ip_address TEXT NOT NULL,
			public_key BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS auth_clients (
			username TEXT PRIMARY KEY,
			verifier TEXT NOT NULL,
			salt TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: create tables: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) AddUser(ctx context.Context, userID string, publicKey []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, public_key) VALUES (?, ?)`, userID, publicKey)
	if isUniqueViolation(err) {
		return fmt.Errorf("add user %q: %w", userID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("add user %q: %w", userID, err)
	}
	return nil
}

func (s *SQLStore) GetUserPublicKey(ctx context.Context, userID string) ([]byte, error) {
	var pub []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT public_key FROM users WHERE user_id = ?`, userID).Scan(&pub)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get user %q public key: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q public key: %w", userID, err)
	}
	return pub, nil
}

func (s *SQLStore) UserExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE user_id = ?)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user %q exists: %w", userID, err)
	}
	return exists, nil
}

func (s *SQLStore) AddSecret(ctx context.Context, userID, secretID string, secret []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vault (user_id, secret_id, secret) VALUES (?, ?, ?)`,
		userID, secretID, secret)
	if isUniqueViolation(err) {
		return fmt.Errorf("add secret %q/%q: %w", userID, secretID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("add secret %q/%q: %w", userID, secretID, err)
	}
	return nil
}

func (s *SQLStore) GetSecret(ctx context.Context, userID, secretID string) ([]byte, error) {
	var secret []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT secret FROM vault WHERE user_id = ? AND secret_id = ?`,
		userID, secretID).Scan(&secret)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get secret %q/%q: %w", userID, secretID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get secret %q/%q: %w", userID, secretID, err)
	}
	return secret, nil
}

func (s *SQLStore) AddServer(ctx context.Context, rec setup.ServiceRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO servers (container_id, type, ip_address, public_key) VALUES (?, ?, ?, ?)`,
		rec.ContainerID, int(rec.Type), rec.IPAddress, rec.PublicKey)
	if isUniqueViolation(err) {
		return fmt.Errorf("add server %q: %w", rec.ContainerID, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("add server %q: %w", rec.ContainerID, err)
	}
	return nil
}

func (s *SQLStore) RemoveServer(ctx context.Context, containerID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM servers WHERE container_id = ?`, containerID)
	if err != nil {
		return fmt.Errorf("remove server %q: %w", containerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove server %q: %w", containerID, err)
	}
	if n == 0 {
		return fmt.Errorf("remove server %q: %w", containerID, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) GetServer(ctx context.Context, containerID string) (setup.ServiceRecord, error) {
	var rec setup.ServiceRecord
	var typ int
	err := s.db.QueryRowContext(ctx,
		`SELECT container_id, type, ip_address, public_key FROM servers WHERE container_id = ?`,
		containerID).Scan(&rec.ContainerID, &typ, &rec.IPAddress, &rec.PublicKey)
	if err == sql.ErrNoRows {
		return setup.ServiceRecord{}, fmt.Errorf("get server %q: %w", containerID, ErrNotFound)
	}
	if err != nil {
		return setup.ServiceRecord{}, fmt.Errorf("get server %q: %w", containerID, err)
	}
	rec.Type = setup.ServiceType(typ)
	return rec, nil
}

func (s *SQLStore) GetServersKeys(ctx context.Context) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT public_key FROM servers`)
	if err != nil {
		return nil, fmt.Errorf("get servers keys: %w", err)
	}
	defer rows.Close()

	var keys [][]byte
	for rows.Next() {
		var key []byte
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("get servers keys: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLStore) GetServersAddresses(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ip_address FROM servers`)
	if err != nil {
		return nil, fmt.Errorf("get servers addresses: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("get servers addresses: %w", err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, rows.Err()
}

func (s *SQLStore) AddAuthClient(ctx context.Context, rec AuthRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_clients (username, verifier, salt) VALUES (?, ?, ?)`,
		rec.Username, rec.Verifier, rec.Salt)
	if isUniqueViolation(err) {
		return fmt.Errorf("add auth client %q: %w", rec.Username, ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("add auth client %q: %w", rec.Username, err)
	}
	return nil
}

func (s *SQLStore) GetAuthClient(ctx context.Context, username string) (AuthRecord, error) {
	rec := AuthRecord{Username: username}
	err := s.db.QueryRowContext(ctx,
		`SELECT verifier, salt FROM auth_clients WHERE username = ?`, username).
		Scan(&rec.Verifier, &rec.Salt)
	if err == sql.ErrNoRows {
		return AuthRecord{}, fmt.Errorf("get auth client %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return AuthRecord{}, fmt.Errorf("get auth client %q: %w", username, err)
	}
	return rec, nil
}

func (s *SQLStore) RemoveAuthClient(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_clients WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("remove auth client %q: %w", username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove auth client %q: %w", username, err)
	}
	if n == 0 {
		return fmt.Errorf("remove auth client %q: %w", username, ErrNotFound)
	}
	return nil
}

// isUniqueViolation recognizes modernc.org/sqlite's constraint-violation
// error without importing its internal error type, by matching the message
// sqlite itself produces.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint failed")
}
