package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/novalearn/internal/catalog"
	"github.com/example/novalearn/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	IDColumn          string // Column with the item ID
	KindColumn        string // Column with the item kind (case, deck, battle, quest)
	TitleColumn       string // Column with the title
	DomainColumn      string // Column with the domain ID or name
	DifficultyColumn  string // Column with the difficulty
	XPColumn          string // Column with the XP reward
	SkillsColumn      string // Column with ';'-separated skills
	DescriptionColumn string // Column with the description
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		IDColumn:          "A",
		KindColumn:        "B",
		TitleColumn:       "C",
		DomainColumn:      "D",
		DifficultyColumn:  "E",
		XPColumn:          "F",
		SkillsColumn:      "G",
		DescriptionColumn: "H",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

var errEmptyRow = errors.New("empty row")

// ImportItems imports catalog items from an Excel or CSV file
func ImportItems(ctx context.Context, w catalog.Writer, config ImportConfig) (*ImportResult, error) {
	if config.StartRow < 1 {
		config.StartRow = 1
	}
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return importFromCSV(ctx, w, config)
	}
	return importFromExcel(ctx, w, config)
}

func importFromExcel(ctx context.Context, w catalog.Writer, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		item, err := config.itemFromRow(row, "")
		result.record(ctx, w, item, err, i+1)
	}
	return result, nil
}

// importFromCSV reads rows in the same column layout as the sheet. A row with
// only its first field set is a section header naming the domain of the rows
// below it, e.g. "Pediatrics,,".
func importFromCSV(ctx context.Context, w catalog.Writer, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	currentDomain := ""

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		if header, ok := sectionHeader(row); ok {
			id, err := resolveDomain(header)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
				currentDomain = ""
				continue
			}
			currentDomain = id
			continue
		}

		item, err := config.itemFromRow(row, currentDomain)
		result.record(ctx, w, item, err, rowNum)
	}
	return result, nil
}

func (r *ImportResult) record(ctx context.Context, w catalog.Writer, item models.CatalogItem, err error, rowNum int) {
	if errors.Is(err, errEmptyRow) {
		r.Skipped++
		return
	}
	r.TotalProcessed++
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}

	created, err := w.Upsert(ctx, item)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}
	if created {
		r.Created++
	} else {
		r.Updated++
	}
}

func sectionHeader(row []string) (string, bool) {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		return "", false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return "", false
		}
	}
	return strings.Trim(strings.TrimSpace(row[0]), "\""), true
}

func (c ImportConfig) itemFromRow(row []string, fallbackDomain string) (models.CatalogItem, error) {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	blank := true
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			blank = false
			break
		}
	}
	if blank {
		return models.CatalogItem{}, errEmptyRow
	}

	item := models.CatalogItem{
		ID:          cell(c.IDColumn),
		Kind:        models.ItemKind(strings.ToLower(cell(c.KindColumn))),
		Title:       cell(c.TitleColumn),
		Description: cell(c.DescriptionColumn),
		Difficulty:  models.ParseDifficulty(cell(c.DifficultyColumn)),
		Skills:      splitSkills(cell(c.SkillsColumn)),
	}

	if item.ID == "" {
		return item, fmt.Errorf("id cannot be empty")
	}
	if strings.Contains(item.ID, ":") {
		return item, fmt.Errorf("id %q must not contain ':'", item.ID)
	}
	switch item.Kind {
	case models.KindCase, models.KindDeck, models.KindBattle, models.KindQuest:
	default:
		return item, fmt.Errorf("unsupported kind %q", item.Kind)
	}
	if item.Title == "" {
		return item, fmt.Errorf("title cannot be empty")
	}

	domain := cell(c.DomainColumn)
	if domain == "" {
		domain = fallbackDomain
	}
	if domain != "" {
		id, err := resolveDomain(domain)
		if err != nil {
			return item, err
		}
		item.DomainID = id
	}

	xp := cell(c.XPColumn)
	if xp == "" {
		item.XPReward = defaultReward(item.Difficulty)
	} else {
		v, err := strconv.Atoi(xp)
		if err != nil || v < 0 {
			return item, fmt.Errorf("invalid xp reward %q", xp)
		}
		item.XPReward = v
	}

	return item, nil
}

// resolveDomain accepts a domain ID or display name
func resolveDomain(s string) (string, error) {
	if d, ok := catalog.DomainByID(strings.ToLower(s)); ok {
		return d.ID, nil
	}
	for _, d := range catalog.Domains() {
		if strings.EqualFold(d.Name, s) {
			return d.ID, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// defaultReward mirrors the case rewards of the built-in catalog
func defaultReward(d models.Difficulty) int {
	switch d {
	case models.DifficultyIntermediate:
		return 300
	case models.DifficultyAdvanced:
		return 450
	}
	return 200
}

func splitSkills(s string) []string {
	var skills []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			skills = append(skills, part)
		}
	}
	return skills
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
