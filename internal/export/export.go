// Package export renders the task list as a flat table for spreadsheets and
// catalog imports.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/LordMilo/SmartTaskManager/internal/model"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Tasks"

var Header = []string{
	"ID",
	"Title",
	"Description",
	"Priority",
	"Status",
	"Due Date",
	"Assignee ID",
	"Attachments Count",
}

func row(t model.Task) []string {
	return []string{
		t.ID,
		t.Title,
		t.Description,
		string(t.Priority),
		string(t.Status),
		t.DueDate,
		t.AssigneeID,
		strconv.Itoa(len(t.Attachments)),
	}
}

// Rows is the header followed by one row per task.
func Rows(tasks []model.Task) [][]string {
	out := make([][]string, 0, len(tasks)+1)
	out = append(out, Header)
	for _, t := range tasks {
		out = append(out, row(t))
	}
	return out
}

// CSV writes the task rows without a header.
func CSV(tasks []model.Task) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, t := range tasks {
		if err := w.Write(row(t)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var columnWidths = []float64{38, 28, 40, 12, 10, 14, 38, 18}

func XLSX(tasks []model.Task) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E3F1E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, r := range Rows(tasks) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		// attachments count is numeric
		if i > 0 {
			values[len(values)-1] = len(tasks[i-1].Attachments)
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
