package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "ivlens/internal/errors"
	"ivlens/internal/models"
)

// SQLiteStore implements PredictionStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based prediction store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		price REAL NOT NULL,
		user_iv REAL NOT NULL,
		market_iv REAL,
		horizon_days INTEGER NOT NULL,
		method TEXT NOT NULL,
		adjustment REAL DEFAULT 0,
		notes TEXT,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_predictions_symbol ON predictions(symbol);
	CREATE INDEX IF NOT EXISTS idx_predictions_created ON predictions(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePrediction persists a prediction, assigning an ID and timestamp when
// missing.
func (s *SQLiteStore) SavePrediction(ctx context.Context, p *models.Prediction) error {
	if p.Symbol == "" {
		return fmt.Errorf("%w: symbol required", apperrors.ErrConfigInvalid)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("pred_%d", p.CreatedAt.UnixNano())
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (id, symbol, price, user_iv, market_iv, horizon_days, method, adjustment, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, strings.ToUpper(p.Symbol), p.Price, p.UserIV, p.MarketIV, p.HorizonDays, p.Method, p.Adjustment, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return nil
}

// GetPrediction fetches one prediction by ID.
func (s *SQLiteStore) GetPrediction(ctx context.Context, id string) (*models.Prediction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, symbol, price, user_iv, market_iv, horizon_days, method, adjustment, notes, created_at
		FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	return p, nil
}

// ListPredictions returns predictions matching the filter, newest first.
func (s *SQLiteStore) ListPredictions(ctx context.Context, filter PredictionFilter) ([]models.Prediction, error) {
	query := `
		SELECT id, symbol, price, user_iv, market_iv, horizon_days, method, adjustment, notes, created_at
		FROM predictions WHERE 1=1`
	var args []interface{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if !filter.StartDate.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query += " AND created_at <= ?"
		args = append(args, filter.EndDate)
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
		}
		predictions = append(predictions, *p)
	}
	return predictions, rows.Err()
}

// DeletePrediction removes a prediction by ID.
func (s *SQLiteStore) DeletePrediction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM predictions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.ErrDataNotFound
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row rowScanner) (*models.Prediction, error) {
	var p models.Prediction
	var notes sql.NullString
	err := row.Scan(&p.ID, &p.Symbol, &p.Price, &p.UserIV, &p.MarketIV, &p.HorizonDays, &p.Method, &p.Adjustment, &notes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Notes = notes.String
	return &p, nil
}
