package parser

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "deck.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestParseWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Chapter", "Question", "Answer"},
		{"Cells", "What encloses a cell?", "The membrane"},
		{"Cells", "", "orphan answer"},
		{"", "What is ATP?", "Energy currency"},
	})

	cards, err := ParseWorkbook(path)
	if err != nil {
		t.Fatalf("ParseWorkbook() returned an unexpected error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, but got %d", len(cards))
	}
	if cards[0].Question != "What encloses a cell?" || cards[0].Answer != "The membrane" || cards[0].Chapter != "Cells" {
		t.Errorf("Unexpected first card: %+v", cards[0])
	}
	if cards[1].Chapter != "" || cards[1].Source != path {
		t.Errorf("Unexpected second card: %+v", cards[1])
	}
}

func TestParseWorkbookWithoutQuestionColumn(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Term", "Definition"},
		{"ATP", "Energy currency"},
	})

	_, err := ParseWorkbook(path)
	if !errors.Is(err, ErrNoQuestionColumn) {
		t.Errorf("Expected ErrNoQuestionColumn, but got %v", err)
	}
}
