package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/litescript/torrent-cli/internal/storage"
)

type ResponseRepository struct {
	db *sql.DB
}

func NewResponseRepository(dbConn *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: dbConn}
}

func (r *ResponseRepository) GetResponse(key string) (storage.CachedResponse, error) {
	var (
		resp        storage.CachedResponse
		contentType sql.NullString
		storedAt    int64
	)

	err := r.db.QueryRow(
		`SELECT cache_key, status_code, content_type, body, stored_at FROM responses WHERE cache_key = ?`,
		key,
	).Scan(&resp.Key, &resp.StatusCode, &contentType, &resp.Body, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CachedResponse{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CachedResponse{}, err
	}

	resp.ContentType = contentType.String
	resp.StoredAt = time.Unix(storedAt, 0)

	return resp, nil
}

// PutResponse inserts or replaces the entry for resp.Key.
func (r *ResponseRepository) PutResponse(resp storage.CachedResponse) error {
	storedAt := resp.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO responses (cache_key, status_code, content_type, body, stored_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			status_code = excluded.status_code,
			content_type = excluded.content_type,
			body = excluded.body,
			stored_at = excluded.stored_at
	`, resp.Key, resp.StatusCode, resp.ContentType, resp.Body, storedAt.Unix())

	return err
}

func (r *ResponseRepository) Prune(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM responses WHERE stored_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
