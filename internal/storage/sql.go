package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/expense-tracker/pkg/transaction"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordRow is the SQLite row for one record. Price is kept as decimal text
// and Position holds the insertion order.
type recordRow struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false"`
	Position int    `gorm:"not null;index"`
	Name     string `gorm:"not null"`
	Price    string `gorm:"not null"`
	Date     string `gorm:"not null"`
}

func (recordRow) TableName() string {
	return "records"
}

// SQLAdapter keeps the collection in a SQLite database
type SQLAdapter struct {
	db   *gorm.DB
	path string
}

// OpenSQL opens (creating if needed) the SQLite database at path
func OpenSQL(path string) (*SQLAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("failed to create database directory: %w", err)}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("failed to migrate schema: %w", err)}
	}

	return &SQLAdapter{db: db, path: path}, nil
}

// Path returns the database file path
func (a *SQLAdapter) Path() string {
	return a.path
}

// Load reads every record in insertion order
func (a *SQLAdapter) Load() ([]transaction.Record, error) {
	var rows []recordRow
	if err := a.db.Order("position").Find(&rows).Error; err != nil {
		return nil, &ReadError{Path: a.path, Err: err}
	}

	records := make([]transaction.Record, 0, len(rows))
	for _, row := range rows {
		p, err := parsePrice(row.Price)
		if err != nil {
			return nil, &ReadError{Path: a.path, Err: fmt.Errorf("record %d has invalid price %q: %w", row.ID, row.Price, err)}
		}
		records = append(records, transaction.Record{
			ID:    row.ID,
			Name:  row.Name,
			Price: p,
			Date:  row.Date,
		})
	}
	if err := checkIDs(records); err != nil {
		return nil, &ReadError{Path: a.path, Err: err}
	}
	return records, nil
}

// Save replaces the table contents with records in one transaction
func (a *SQLAdapter) Save(records []transaction.Record) error {
	rows := make([]recordRow, 0, len(records))
	for i, r := range records {
		rows = append(rows, recordRow{
			ID:       r.ID,
			Position: i,
			Name:     r.Name,
			Price:    price(r.Price).text(),
			Date:     r.Date,
		})
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM records").Error; err != nil {
			return fmt.Errorf("failed to clear records: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to insert records: %w", err)
		}
		return nil
	})
	if err != nil {
		return &WriteError{Path: a.path, Err: err}
	}
	return nil
}

// Close closes the database connection
func (a *SQLAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
