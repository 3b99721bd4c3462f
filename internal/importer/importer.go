// Package importer loads lesson content (hanzi, pinyin reading, meaning)
// from Excel or CSV files into the item store.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/example/pintrain/pkg/models"
)

// ItemUpserter is the storage surface the importer writes through.
type ItemUpserter interface {
	GetByHanzi(ctx context.Context, hanzi string, itemType models.ItemType, lessonID string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
}

// Config defines the import configuration. Rows are expected as
// hanzi, pinyin, item type, lesson id, meaning.
type Config struct {
	FilePath   string // path to the .xlsx or .csv file
	SheetName  string // sheet to import from (xlsx only)
	SkipHeader bool   // skip the first row
}

// DefaultConfig returns the default import configuration.
func DefaultConfig(path string) Config {
	return Config{
		FilePath:   path,
		SheetName:  "Sheet1",
		SkipHeader: true,
	}
}

// Result holds the outcome of an import operation.
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Import reads the file and upserts each row as an item. Malformed rows
// are collected into Result.Errors rather than aborting the run.
func Import(ctx context.Context, repo ItemUpserter, config Config) (*Result, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(config.FilePath)); ext {
	case ".xlsx":
		rows, err = readExcel(config)
	case ".csv":
		rows, err = readCSV(config)
	default:
		return nil, fmt.Errorf("unsupported file format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for i, row := range rows {
		if config.SkipHeader && i == 0 {
			continue
		}
		result.TotalProcessed++

		item, err := parseRow(row)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}

		existing, err := repo.GetByHanzi(ctx, item.Hanzi, item.ItemType, item.LessonID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %q: %v", item.Hanzi, err)
		}
		if existing != nil {
			existing.Pinyin = item.Pinyin
			existing.Meaning = item.Meaning
			if err := repo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to update %q: %v", item.Hanzi, err)
			}
			result.Updated++
			continue
		}

		item.ID = uuid.NewString()
		item.CreatedAt = time.Now().UTC()
		if err := repo.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create %q: %v", item.Hanzi, err)
		}
		result.Created++
	}
	return result, nil
}

func parseRow(row []string) (*models.Item, error) {
	if len(row) < 4 {
		return nil, fmt.Errorf("expected at least 4 columns, got %d", len(row))
	}
	hanzi := strings.TrimSpace(row[0])
	pinyin := strings.TrimSpace(row[1])
	itemType := models.ItemType(strings.ToLower(strings.TrimSpace(row[2])))
	lessonID := strings.TrimSpace(row[3])

	if hanzi == "" || pinyin == "" {
		return nil, fmt.Errorf("hanzi and pinyin are required")
	}
	if !itemType.IsValid() {
		return nil, fmt.Errorf("unknown item type %q", row[2])
	}
	if lessonID == "" {
		return nil, fmt.Errorf("lesson id is required")
	}

	item := &models.Item{
		ItemType: itemType,
		Hanzi:    hanzi,
		Pinyin:   pinyin,
		LessonID: lessonID,
	}
	if len(row) > 4 {
		item.Meaning = strings.TrimSpace(row[4])
	}
	return item, nil
}

func readExcel(config Config) ([][]string, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %v", config.SheetName, err)
	}
	return rows, nil
}

func readCSV(config Config) ([][]string, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %v", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // rows may omit trailing columns

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %v", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
