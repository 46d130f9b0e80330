package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-sync/core/reconcile"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRowNotFound is returned when a write targets a position with no row.
var ErrRowNotFound = errors.New("row not found")

// SheetRow is one physical row of a sheet. Position 0 holds the header;
// data rows occupy positions 1..n.
type SheetRow struct {
	ID        uint      `gorm:"primaryKey"`
	Sheet     string    `gorm:"size:128;not null;uniqueIndex:idx_sheet_position"`
	Position  int       `gorm:"not null;uniqueIndex:idx_sheet_position"`
	Cells     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName overrides the GORM default.
func (SheetRow) TableName() string {
	return "sheet_rows"
}

// SheetStore is a reconcile.Store backed by a SQL table.
// Several named sheets can share one table.
type SheetStore struct {
	db    *gorm.DB
	sheet string
}

// NewSheetStore migrates the sheet_rows table and returns a store for sheet.
func NewSheetStore(db *gorm.DB, sheet string) (*SheetStore, error) {
	if sheet == "" {
		return nil, fmt.Errorf("sheet name is required")
	}
	if err := db.AutoMigrate(&SheetRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sheet_rows: %w", err)
	}
	return &SheetStore{db: db, sheet: sheet}, nil
}

// Sheet returns the sheet name.
func (s *SheetStore) Sheet() string {
	return s.sheet
}

// HeaderRow returns the header, or nil if the sheet has none yet.
func (s *SheetStore) HeaderRow(ctx context.Context) (reconcile.HeaderSet, error) {
	var row SheetRow
	err := s.db.WithContext(ctx).
		Where("sheet = ? AND position = ?", s.sheet, 0).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cells, err := decodeCells(row.Cells)
	if err != nil {
		return nil, fmt.Errorf("header row: %w", err)
	}
	return reconcile.HeaderSet(cells), nil
}

// DataRows returns the data rows ordered by position.
func (s *SheetStore) DataRows(ctx context.Context) ([]reconcile.Row, error) {
	var rows []SheetRow
	err := s.db.WithContext(ctx).
		Where("sheet = ? AND position > ?", s.sheet, 0).
		Order("position").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]reconcile.Row, 0, len(rows))
	for _, r := range rows {
		cells, err := decodeCells(r.Cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", r.Position, err)
		}
		out = append(out, reconcile.Row{Position: r.Position, Values: cells})
	}
	return out, nil
}

// WriteHeaderRow creates or replaces the header.
func (s *SheetStore) WriteHeaderRow(ctx context.Context, header reconcile.HeaderSet) error {
	cells, err := encodeCells(header)
	if err != nil {
		return err
	}
	row := SheetRow{Sheet: s.sheet, Position: 0, Cells: cells}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sheet"}, {Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"cells", "updated_at"}),
	}).Create(&row).Error
}

// WriteRow overwrites the data row at position.
func (s *SheetStore) WriteRow(ctx context.Context, position int, values []string) error {
	if position < 1 {
		return fmt.Errorf("%w: position %d", ErrRowNotFound, position)
	}
	cells, err := encodeCells(values)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&SheetRow{}).
		Where("sheet = ? AND position = ?", s.sheet, position).
		Updates(map[string]any{"cells": cells, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: position %d", ErrRowNotFound, position)
	}
	return nil
}

// AppendRow adds a data row after the last one.
func (s *SheetStore) AppendRow(ctx context.Context, values []string) error {
	cells, err := encodeCells(values)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&SheetRow{}).
			Where("sheet = ?", s.sheet).
			Select("COALESCE(MAX(position), 0)").
			Scan(&last).Error; err != nil {
			return err
		}
		return tx.Create(&SheetRow{Sheet: s.sheet, Position: last + 1, Cells: cells}).Error
	})
}

// SortDataRows rewrites the data rows in key order inside one transaction.
func (s *SheetStore) SortDataRows(ctx context.Context, keyColumn int, ascending bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := &SheetStore{db: tx, sheet: s.sheet}
		rows, err := store.DataRows(ctx)
		if err != nil {
			return err
		}
		if len(rows) < 2 {
			return nil
		}

		reconcile.SortRows(rows, keyColumn, ascending)

		if err := tx.Where("sheet = ? AND position > ?", s.sheet, 0).Delete(&SheetRow{}).Error; err != nil {
			return err
		}

		records := make([]SheetRow, 0, len(rows))
		for _, r := range rows {
			cells, err := encodeCells(r.Values)
			if err != nil {
				return err
			}
			records = append(records, SheetRow{Sheet: s.sheet, Position: r.Position, Cells: cells})
		}
		return tx.CreateInBatches(records, 100).Error
	})
}

// DataRowCount returns the number of data rows.
func (s *SheetStore) DataRowCount(ctx context.Context) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&SheetRow{}).
		Where("sheet = ? AND position > ?", s.sheet, 0).
		Count(&n).Error
	return int(n), err
}

func encodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCells(raw string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(raw), &cells); err != nil {
		return nil, fmt.Errorf("invalid cells: %w", err)
	}
	return cells, nil
}
