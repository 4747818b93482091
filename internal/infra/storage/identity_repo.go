package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLiteIdentityRepository implements IdentityRepository for SQLite.
type SQLiteIdentityRepository struct {
	db *sql.DB
}

func NewSQLiteIdentityRepository(db *sql.DB) *SQLiteIdentityRepository {
	return &SQLiteIdentityRepository{db: db}
}

func (r *SQLiteIdentityRepository) Upsert(ctx context.Context, record IdentityRecord) error {
	query := `
		INSERT INTO identities (key, type_id, variant, discovered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key, type_id, variant) DO UPDATE SET discovered_at = excluded.discovered_at
	`
	_, err := r.db.ExecContext(ctx, query,
		record.Key, record.TypeID, record.Variant, record.DiscoveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert identity: %w", err)
	}
	return nil
}

func (r *SQLiteIdentityRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]IdentityRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []IdentityRecord
	for rows.Next() {
		var rec IdentityRecord
		if err := rows.Scan(&rec.Key, &rec.TypeID, &rec.Variant, &rec.DiscoveredAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *SQLiteIdentityRepository) GetByKey(ctx context.Context, key string) ([]IdentityRecord, error) {
	query := `SELECT key, type_id, variant, discovered_at FROM identities WHERE key = ? ORDER BY discovered_at ASC`
	return r.getMany(ctx, query, key)
}

func (r *SQLiteIdentityRepository) GetAll(ctx context.Context) ([]IdentityRecord, error) {
	query := `SELECT key, type_id, variant, discovered_at FROM identities ORDER BY discovered_at ASC`
	return r.getMany(ctx, query)
}
