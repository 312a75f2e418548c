package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LedgerRepository appends entries through pgx so they join the caller's tx,
// and reads history through gorm.
type LedgerRepository struct {
	conn
	db *gorm.DB
}

// NewLedgerRepository builds the gorm read model on top of pool.
func NewLedgerRepository(pool *pgxpool.Pool) (*LedgerRepository, error) {
	db, err := openGorm(stdlib.OpenDBFromPool(pool))
	if err != nil {
		return nil, err
	}
	return &LedgerRepository{conn: conn{pool: pool}, db: db}, nil
}

func openGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}
	return db, nil
}

func (r *LedgerRepository) AppendLedger(ctx context.Context, entry domain.LedgerEntry) error {
	const stmt = `
INSERT INTO ledger_entries (id, pool_id, action, quantity, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.exec(ctx, stmt, entry.ID, entry.PoolID, string(entry.Action), entry.Quantity, entry.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidUUID(err) {
			return domain.ErrPoolNotFound
		}
		if isCheckViolation(err) {
			return domain.ErrInvalidAction
		}
		return fmt.Errorf("append ledger entry: %w", err)
	}

	const sampleStmt = `
INSERT INTO ledger_entry_samples (entry_id, position, sample_code)
VALUES ($1, $2, $3)`
	for i, code := range entry.SampleCodes {
		if _, err := r.exec(ctx, sampleStmt, entry.ID, i, code); err != nil {
			return fmt.Errorf("append ledger sample: %w", err)
		}
	}
	return nil
}

type poolRow struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
}

func (poolRow) TableName() string { return "pools" }

type ledgerSampleRow struct {
	EntryID    string `gorm:"column:entry_id;primaryKey"`
	Position   int    `gorm:"column:position;primaryKey"`
	SampleCode string `gorm:"column:sample_code"`
}

func (ledgerSampleRow) TableName() string { return "ledger_entry_samples" }

type ledgerEntryRow struct {
	ID        string            `gorm:"column:id;primaryKey"`
	Seq       int64             `gorm:"column:seq;->"`
	PoolID    string            `gorm:"column:pool_id"`
	Action    string            `gorm:"column:action"`
	Quantity  *int              `gorm:"column:quantity"`
	CreatedAt time.Time         `gorm:"column:created_at"`
	Pool      poolRow           `gorm:"foreignKey:PoolID"`
	Samples   []ledgerSampleRow `gorm:"foreignKey:EntryID"`
}

func (ledgerEntryRow) TableName() string { return "ledger_entries" }

func (row ledgerEntryRow) toEntry() domain.LedgerEntry {
	codes := make([]string, 0, len(row.Samples))
	for _, s := range row.Samples {
		codes = append(codes, s.SampleCode)
	}
	return domain.LedgerEntry{
		ID:          row.ID,
		PoolID:      row.PoolID,
		PoolName:    row.Pool.Name,
		Action:      domain.LedgerAction(row.Action),
		Quantity:    row.Quantity,
		SampleCodes: codes,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}

// ListLedger returns matching entries newest first.
func (r *LedgerRepository) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	tx := r.db.WithContext(ctx).
		Preload("Pool").
		Preload("Samples", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })

	if filter.PoolID != "" {
		tx = tx.Where("pool_id = ?", filter.PoolID)
	}
	if filter.Action != "" {
		tx = tx.Where("action = ?", string(filter.Action))
	}
	if start, end, ok := filter.DayBounds(); ok {
		tx = tx.Where("created_at >= ? AND created_at < ?", start, end)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}

	var rows []ledgerEntryRow
	if err := tx.Order("created_at DESC").Order("seq DESC").Find(&rows).Error; err != nil {
		if isInvalidUUID(err) {
			return []domain.LedgerEntry{}, nil
		}
		return nil, fmt.Errorf("list ledger: %w", err)
	}

	entries := make([]domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}
