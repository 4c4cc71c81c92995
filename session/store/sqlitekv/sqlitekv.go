package sqlitekv

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/eventry/eventry-client-go/session/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// KV is the sqlite-backed durable store used on device. A single kv table
// holds every namespaced entry; multi-key writes run in one transaction so a
// session record is persisted all-or-nothing.
type KV struct {
	db  *sql.DB
	dsn string
}

var _ store.KV = (*KV)(nil)

func New(dsn string) (*KV, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitekv.New] sql.Open")
	}

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[sqlitekv.New] create schema")
	}

	return &KV{db: db, dsn: dsn}, nil
}

func (k *KV) Close() error { return k.db.Close() }

// Ping verifies the database is still usable.
func (k *KV) Ping(ctx context.Context) error {
	return k.db.PingContext(ctx)
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := k.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[sqlitekv.Get] QueryRow")
	}
	return value, true, nil
}

func (k *KV) PutAll(ctx context.Context, entries map[string]string) error {
	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[sqlitekv.PutAll] BeginTx")
	}
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	for key, value := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value)
		if err != nil {
			return errors.Wrapf(err, "[sqlitekv.PutAll] upsert %q", key)
		}
	}

	return errors.Wrap(tx.Commit(), "[sqlitekv.PutAll] Commit")
}

func (k *KV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := k.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[sqlitekv.Delete] BeginTx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return errors.Wrapf(err, "[sqlitekv.Delete] delete %q", key)
		}
	}

	return errors.Wrap(tx.Commit(), "[sqlitekv.Delete] Commit")
}

func (k *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := k.db.QueryContext(ctx,
		`SELECT key FROM kv WHERE key LIKE ? || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitekv.Keys] Query")
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "[sqlitekv.Keys] Scan")
		}
		keys = append(keys, key)
	}
	return keys, errors.Wrap(rows.Err(), "[sqlitekv.Keys] rows")
}
