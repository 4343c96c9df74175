package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"lira-converter/internal/converter/models"
)

// ============================================================
// SQLite Repository
// ============================================================

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init запускает миграции.
func (r *Repository) Init(ctx context.Context, migrationsPath string) error {
	if err := r.runMigrations(ctx, migrationsPath); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Create сохраняет запись о конвертации; CreatedAt заполняет база.
func (r *Repository) Create(ctx context.Context, c *models.Conversion) error {
	parsed, err := json.Marshal(c.Parsed)
	if err != nil {
		return fmt.Errorf("encode parsed counts: %w", err)
	}
	exported, err := json.Marshal(c.Exported)
	if err != nil {
		return fmt.Errorf("encode exported counts: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
        INSERT INTO conversions (id, source_name, mode, filtered, parsed, exported, nodes, layers, dof_points)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, c.ID, c.SourceName, c.Mode, c.Filtered, string(parsed), string(exported), c.Nodes, c.Layers, c.DOFPoints)
	if err != nil {
		return fmt.Errorf("insert conversion: %w", err)
	}

	saved, err := r.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = saved.CreatedAt
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Conversion, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, source_name, mode, filtered, parsed, exported, nodes, layers, dof_points, created_at
        FROM conversions
        WHERE id = ?
    `, id)

	c, err := scanConversion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// List возвращает последние конвертации, новые первыми.
func (r *Repository) List(ctx context.Context, limit int) ([]models.Conversion, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, source_name, mode, filtered, parsed, exported, nodes, layers, dof_points, created_at
        FROM conversions
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Conversion{}
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(s scanner) (*models.Conversion, error) {
	var c models.Conversion
	var parsed, exported string
	if err := s.Scan(&c.ID, &c.SourceName, &c.Mode, &c.Filtered, &parsed, &exported,
		&c.Nodes, &c.Layers, &c.DOFPoints, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(parsed), &c.Parsed); err != nil {
		return nil, fmt.Errorf("decode parsed counts: %w", err)
	}
	if err := json.Unmarshal([]byte(exported), &c.Exported); err != nil {
		return nil, fmt.Errorf("decode exported counts: %w", err)
	}
	return &c, nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
