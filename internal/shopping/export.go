package shopping

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a grocery export file format.
type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Grocery"

// ParseFormat accepts txt/text, csv and xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text", "":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// File is a rendered export ready to be saved or sent.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ToText renders one "- item" line per entry, adding "  xN" when N > 1.
func ToText(g *GroceryList) string {
	lines := make([]string, 0, g.Len())
	for _, it := range g.items {
		if it.Count > 1 {
			lines = append(lines, fmt.Sprintf("- %s  x%d", it.Name, it.Count))
		} else {
			lines = append(lines, "- "+it.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// ToCSV renders an item,count table. Items are always quoted.
func ToCSV(g *GroceryList) string {
	lines := make([]string, 0, g.Len()+1)
	lines = append(lines, "item,count")
	for _, it := range g.items {
		lines = append(lines, quoteCSV(it.Name)+","+strconv.Itoa(it.Count))
	}
	return strings.Join(lines, "\n")
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteXLSX writes the list as a two-column spreadsheet.
func WriteXLSX(w io.Writer, g *GroceryList) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]interface{}{"item", "count"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, it := range g.items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]interface{}{it.Name, it.Count}); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Export renders g in the requested format.
func Export(g *GroceryList, format Format) (File, error) {
	switch format {
	case FormatText:
		return File{
			Filename:    "grocery-week.txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        []byte(ToText(g)),
		}, nil
	case FormatCSV:
		return File{
			Filename:    "grocery-week.csv",
			ContentType: "text/csv; charset=utf-8",
			Data:        []byte(ToCSV(g)),
		}, nil
	case FormatXLSX:
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, g); err != nil {
			return File{}, err
		}
		return File{
			Filename:    "grocery-week.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        buf.Bytes(),
		}, nil
	}
	return File{}, fmt.Errorf("unknown export format %q", format)
}
