package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/vaultgate/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS approvals (
	vault_id    INTEGER NOT NULL,
	sub_account INTEGER NOT NULL,
	digest      TEXT    NOT NULL,
	mode        TEXT    NOT NULL,
	valid       INTEGER NOT NULL,
	created_at  TEXT    NOT NULL,
	revoked_at  TEXT,
	PRIMARY KEY (vault_id, sub_account, digest)
);`

// SQLStore is the sqlite registry backend. The primary key
// (vault_id, sub_account, digest) is the deterministic-address analog:
// one row per approval, addressable only by its scope and digest.
type SQLStore struct {
	db *sql.DB
}

// OpenSQL opens (or creates) a sqlite-backed store at the given path.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open registry database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize registry schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Put(rec Record) error {
	var revokedAt any
	if rec.RevokedAt != nil {
		revokedAt = rec.RevokedAt.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.db.Exec(`
		INSERT INTO approvals (vault_id, sub_account, digest, mode, valid, created_at, revoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (vault_id, sub_account, digest) DO UPDATE SET
			mode = excluded.mode,
			valid = excluded.valid,
			revoked_at = excluded.revoked_at`,
		rec.Scope.VaultID, rec.Scope.SubAccount, rec.Digest.Hex(),
		string(rec.Mode), rec.Valid, rec.CreatedAt.UTC().Format(time.RFC3339Nano), revokedAt,
	)
	return err
}

func (s *SQLStore) Get(scope model.Scope, digest model.Digest) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT mode, valid, created_at, revoked_at FROM approvals
		WHERE vault_id = ? AND sub_account = ? AND digest = ?`,
		scope.VaultID, scope.SubAccount, digest.Hex(),
	)

	var (
		mode      string
		valid     bool
		createdAt string
		revokedAt sql.NullString
	)
	if err := row.Scan(&mode, &valid, &createdAt, &revokedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec := Record{
		Scope:  scope,
		Digest: digest,
		Mode:   Mode(mode),
		Valid:  valid,
	}
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for %s: %w", digest, err)
	}
	if revokedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, revokedAt.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt revoked_at for %s: %w", digest, err)
		}
		rec.RevokedAt = &t
	}
	return &rec, nil
}

func (s *SQLStore) Delete(scope model.Scope, digest model.Digest) error {
	res, err := s.db.Exec(`
		DELETE FROM approvals WHERE vault_id = ? AND sub_account = ? AND digest = ?`,
		scope.VaultID, scope.SubAccount, digest.Hex(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) List() ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT vault_id, sub_account, digest, mode, valid, created_at, revoked_at
		FROM approvals ORDER BY vault_id, sub_account, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			digestHex string
			createdAt string
			revokedAt sql.NullString
			mode      string
		)
		if err := rows.Scan(&rec.Scope.VaultID, &rec.Scope.SubAccount, &digestHex,
			&mode, &rec.Valid, &createdAt, &revokedAt); err != nil {
			return nil, err
		}
		rec.Mode = Mode(mode)
		if rec.Digest, err = model.ParseDigest(digestHex); err != nil {
			return nil, fmt.Errorf("corrupt digest %q: %w", digestHex, err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("corrupt created_at for %s: %w", digestHex, err)
		}
		if revokedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, revokedAt.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt revoked_at for %s: %w", digestHex, err)
			}
			rec.RevokedAt = &t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
