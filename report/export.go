// Package report renders grade sheets for the outside world: CSV for
// the classic per-course export, XLSX for spreadsheet pipelines.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/campuskit/gradebook/core/course"
)

// Filename returns the deterministic per-course export name.
func Filename(courseID string) string {
	return fmt.Sprintf("grades_%s.csv", courseID)
}

// XLSXFilename returns the spreadsheet variant of Filename.
func XLSXFilename(courseID string) string {
	return fmt.Sprintf("grades_%s.xlsx", courseID)
}

func header(sheet course.Sheet) []string {
	hdr := make([]string, 0, len(sheet.Components)+2)
	hdr = append(hdr, "Student ID")
	hdr = append(hdr, sheet.Components...)
	hdr = append(hdr, "Total")
	return hdr
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// WriteCSV writes the sheet as delimited rows: a header line, then one
// line per student.
func WriteCSV(w io.Writer, sheet course.Sheet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(sheet)); err != nil {
		return errors.Wrap(err, "report: writing csv header")
	}
	for _, row := range sheet.Rows {
		record := make([]string, 0, len(row.Scores)+2)
		record = append(record, row.StudentID)
		for _, score := range row.Scores {
			record = append(record, formatScore(score))
		}
		record = append(record, formatScore(row.Total))
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "report: writing csv row for %s", row.StudentID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "report: flushing csv")
}

// SaveCSV writes the sheet to dir under the deterministic name and
// returns the full path.
func SaveCSV(dir string, sheet course.Sheet) (string, error) {
	path := filepath.Join(dir, Filename(sheet.CourseID))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "report: creating %s", path)
	}
	if err := WriteCSV(f, sheet); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "report: closing %s", path)
	}
	return path, nil
}

// WriteXLSX writes the sheet as a single "Grades" worksheet.
func WriteXLSX(w io.Writer, sheet course.Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	const ws = "Grades"
	idx, err := f.NewSheet(ws)
	if err != nil {
		return errors.Wrap(err, "report: creating worksheet")
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "report: removing default worksheet")
	}

	writeRow := func(rowNum int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return f.SetSheetRow(ws, cell, &values)
	}

	hdr := header(sheet)
	hdrValues := make([]interface{}, len(hdr))
	for i, h := range hdr {
		hdrValues[i] = h
	}
	if err := writeRow(1, hdrValues); err != nil {
		return errors.Wrap(err, "report: writing xlsx header")
	}

	for i, row := range sheet.Rows {
		values := make([]interface{}, 0, len(row.Scores)+2)
		values = append(values, row.StudentID)
		for _, score := range row.Scores {
			values = append(values, score)
		}
		values = append(values, row.Total)
		if err := writeRow(i+2, values); err != nil {
			return errors.Wrapf(err, "report: writing xlsx row for %s", row.StudentID)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "report: writing xlsx")
	}
	return nil
}

// SaveXLSX writes the sheet to dir as a spreadsheet and returns the
// full path.
func SaveXLSX(dir string, sheet course.Sheet) (string, error) {
	path := filepath.Join(dir, XLSXFilename(sheet.CourseID))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "report: creating %s", path)
	}
	if err := WriteXLSX(f, sheet); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "report: closing %s", path)
	}
	return path, nil
}
