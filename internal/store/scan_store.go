package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vbonduro/foodscan/internal/analysis"
	"github.com/vbonduro/foodscan/internal/domain"
)

type ScanStore struct {
	db *sql.DB
}

func NewScanStore(db *sql.DB) *ScanStore {
	return &ScanStore{db: db}
}

const scanColumns = `id, image_path, scan_result, created_at, food_type, photo_key`

// Create persists result together with the name of the uploaded file. The
// food type is taken from the result so the two cannot disagree.
func (s *ScanStore) Create(ctx context.Context, imagePath, photoKey string, result *analysis.Result) (*domain.ScanRecord, error) {
	if result == nil || len(result.Document) == 0 {
		return nil, fmt.Errorf("failed to create scan: empty result")
	}
	if !result.Type.Valid() {
		return nil, fmt.Errorf("failed to create scan: unknown food type %q", result.Type)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO food_scans (image_path, scan_result, food_type, photo_key) VALUES (?, ?, ?, ?)
	`, imagePath, string(result.Document), string(result.Type), photoKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create scan: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit scan: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ScanStore) GetByID(ctx context.Context, id int64) (*domain.ScanRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, `
		SELECT `+scanColumns+` FROM food_scans WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return rec, nil
}

// List returns every scan, newest first.
func (s *ScanStore) List(ctx context.Context) ([]*domain.ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+scanColumns+` FROM food_scans ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := []*domain.ScanRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}

	return scans, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.ScanRecord, error) {
	var (
		rec      domain.ScanRecord
		doc      string
		foodType string
	)
	if err := row.Scan(&rec.ID, &rec.ImagePath, &doc, &rec.CreatedAt, &foodType, &rec.PhotoKey); err != nil {
		return nil, err
	}
	rec.ScanResult = json.RawMessage(doc)
	rec.FoodType = domain.FoodType(foodType)
	return &rec, nil
}
