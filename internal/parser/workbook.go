package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conorfennell/chapterdeck/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ErrNoQuestionColumn is returned when a workbook header has no "question" column.
var ErrNoQuestionColumn = errors.New("workbook has no question column")

// ParseWorkbook reads cards from the first sheet of an Excel workbook. The
// first row is a header naming the "question", "answer" and optional
// "chapter" columns in any order. Rows without a question are skipped.
func ParseWorkbook(path string) ([]domain.Card, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := map[string]int{}
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	qCol, ok := columns["question"]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoQuestionColumn)
	}

	cell := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var cards []domain.Card
	for _, row := range rows[1:] {
		if qCol >= len(row) || strings.TrimSpace(row[qCol]) == "" {
			continue
		}
		cards = append(cards, domain.Card{
			Question: cell(row, "question"),
			Answer:   cell(row, "answer"),
			Chapter:  cell(row, "chapter"),
			Source:   path,
		})
	}
	return cards, nil
}
