package service

import (
	"fmt"

	"github.com/stemsi/paxcalc-backend/internal/model"
	"github.com/stemsi/paxcalc-backend/internal/pax"
	"github.com/xuri/excelize/v2"
)

const (
	conversionSheet = "Conversion"
	classesSheet    = "Classes"
)

// ConversionRow is one line of a conversion table.
type ConversionRow struct {
	Class               model.Class
	OutputTime          float64
	TimeDifference      float64
	FormattedOutput     string
	FormattedDifference string
}

// ExportService renders conversion tables as spreadsheets.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ConversionTable converts inputTime in class fromCode into every active
// class of idx, in display order.
func (s *ExportService) ConversionTable(idx *model.PaxIndex, inputTime float64, fromCode string) ([]ConversionRow, error) {
	from, ok := pax.FindClass(fromCode, idx)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClassNotFound, fromCode)
	}

	active := pax.ActiveClasses(idx)
	rows := make([]ConversionRow, 0, len(active))
	for _, to := range active {
		res, err := pax.Convert(inputTime, from, to)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConversion, err)
		}
		out, err := pax.FormatTime(res.OutputTime)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConversion, err)
		}
		rows = append(rows, ConversionRow{
			Class:               to,
			OutputTime:          res.OutputTime,
			TimeDifference:      res.TimeDifference,
			FormattedOutput:     out,
			FormattedDifference: pax.FormatDifference(res.TimeDifference),
		})
	}
	return rows, nil
}

// WriteWorkbook builds a workbook with the conversion table and the full
// class list of idx. The caller closes the returned file.
func (s *ExportService) WriteWorkbook(idx *model.PaxIndex, from model.Class, formattedInput string, rows []ConversionRow) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"1c399e"},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Color: "ffffff",
			Bold:  true,
		},
	})
	if err != nil {
		return nil, err
	}
	fasterStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "3cb03a", Bold: true},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", conversionSheet); err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s in %s (%s %d %s)", formattedInput, from.Code, idx.IndexType, idx.Year, idx.Version)
	f.SetCellValue(conversionSheet, "A1", title)
	setRow(f, conversionSheet, 3, []any{"Code", "Class", "PAX", "Time", "Difference"})
	f.SetCellStyle(conversionSheet, "A3", "E3", headerStyle)

	for i, row := range rows {
		r := i + 4
		setRow(f, conversionSheet, r, []any{
			row.Class.Code, row.Class.Name, row.Class.PaxIndex, row.FormattedOutput, row.FormattedDifference,
		})
		if row.TimeDifference < 0 {
			cell, _ := excelize.CoordinatesToCellName(5, r)
			f.SetCellStyle(conversionSheet, cell, cell, fasterStyle)
		}
	}
	f.SetColWidth(conversionSheet, "B", "B", 36)

	if _, err := f.NewSheet(classesSheet); err != nil {
		return nil, err
	}
	setRow(f, classesSheet, 1, []any{"Group", "Code", "Class", "PAX", "Active"})
	f.SetCellStyle(classesSheet, "A1", "E1", headerStyle)

	r := 2
	for _, g := range idx.ClassGroups {
		for _, c := range g.Classes {
			setRow(f, classesSheet, r, []any{g.Name, c.Code, c.Name, c.PaxIndex, c.IsActive})
			r++
		}
	}
	f.SetColWidth(classesSheet, "A", "A", 24)
	f.SetColWidth(classesSheet, "C", "C", 36)

	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	f.SetSheetRow(sheet, cell, &values)
}
