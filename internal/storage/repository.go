package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chitieu/internal/core"
	applog "chitieu/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a transaction id has no row.
var ErrNotFound = errors.New("transaction not found")

const createdAtLayout = "2006-01-02 15:04:05"

// Dates are read back through date()/datetime() so the driver hands us
// plain text instead of guessing at time.Time conversions.
const selectColumns = `id, user_id, amount, category, description,
	date(transaction_date), datetime(created_at), raw_input, ai_confidence, metadata`

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

func dsnFor(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := dsnFor(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := SchemaVersion(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		db.Close()
		return nil, fmt.Errorf("schema version %d is dirty", version)
	}

	logger = logger.WithComponent(applog.ComponentStorage)
	logger.Info("Database ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveTransaction inserts tx and returns the stored row, including the
// store-assigned created_at.
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	var metadata sql.NullString
	if len(tx.Metadata) > 0 {
		b, err := json.Marshal(tx.Metadata)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("encode metadata: %w", err)
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(id, user_id, amount, category, description, transaction_date, raw_input, ai_confidence, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Amount, string(tx.Category), tx.Description,
		tx.TransactionDate.String(), nullString(tx.RawInput), tx.AIConfidence, metadata)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	saved, err := r.GetTransaction(ctx, tx.ID)
	if err != nil {
		return core.Transaction{}, err
	}

	r.logger.InfoContext(ctx, "Transaction saved",
		applog.FieldTxID, saved.ID,
		applog.FieldUserID, saved.UserID,
		applog.FieldAmount, saved.Amount,
		applog.FieldCategory, saved.Category.String())

	return saved, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

// FindSimilar returns the user's transactions in category dated on or after
// since whose amount lies in [minAmount, maxAmount].
func (r *SQLiteRepository) FindSimilar(ctx context.Context, userID string, category core.Category, since core.Date, minAmount, maxAmount float64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM transactions
		WHERE user_id = ?
			AND category = ?
			AND transaction_date >= ?
			AND amount BETWEEN ? AND ?
		ORDER BY transaction_date DESC`,
		userID, string(category), since.String(), minAmount, maxAmount)
	if err != nil {
		return nil, fmt.Errorf("query similar transactions: %w", err)
	}
	return collect(rows)
}

// ListTransactions returns the user's transactions dated within [from, to],
// newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, from, to core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM transactions
		WHERE user_id = ?
			AND transaction_date >= ?
			AND transaction_date <= ?
		ORDER BY transaction_date DESC, created_at DESC`,
		userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		tx         core.Transaction
		category   string
		date       string
		createdAt  sql.NullString
		rawInput   sql.NullString
		confidence sql.NullFloat64
		metadata   sql.NullString
	)
	if err := s.Scan(&tx.ID, &tx.UserID, &tx.Amount, &category, &tx.Description,
		&date, &createdAt, &rawInput, &confidence, &metadata); err != nil {
		return core.Transaction{}, err
	}

	tx.Category = core.Category(category)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction_date %q: %w", date, err)
	}
	tx.TransactionDate = d

	if createdAt.Valid {
		t, err := time.ParseInLocation(createdAtLayout, createdAt.String, time.UTC)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt.String, err)
		}
		tx.CreatedAt = t
	}
	tx.RawInput = rawInput.String
	tx.AIConfidence = confidence.Float64
	if metadata.Valid && strings.TrimSpace(metadata.String) != "" {
		if err := json.Unmarshal([]byte(metadata.String), &tx.Metadata); err != nil {
			return core.Transaction{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return tx, nil
}

func collect(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
