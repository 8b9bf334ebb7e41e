package summary

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Summary"

var exportHeadings = []string{"Product ID", "Name", "Variant", "Sold Quantity", "Total Income", "Profit"}

// ExportMonthly renders a stored monthly summary as an xlsx workbook.
func (s *service) ExportMonthly(ctx context.Context, month string) ([]byte, error) {
	summary, err := s.repo.GetMonthly(ctx, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	f.SetCellValue(exportSheet, "A1", summary.MonthName)
	f.SetCellValue(exportSheet, "A2", fmt.Sprintf("%s to %s (%d days)", summary.StartDate, summary.EndDate, summary.DaysIncluded))

	for i, h := range exportHeadings {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(exportSheet, cell, h)
	}
	row := 5
	for _, it := range summary.Items {
		f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), it.ProductID)
		f.SetCellValue(exportSheet, fmt.Sprintf("B%d", row), it.Name)
		f.SetCellValue(exportSheet, fmt.Sprintf("C%d", row), it.Variant)
		f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), it.SoldQuantity)
		f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), it.TotalIncome.InexactFloat64())
		f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), it.Profit.InexactFloat64())
		row++
	}
	f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(exportSheet, fmt.Sprintf("E%d", row), summary.TotalIncome.InexactFloat64())
	f.SetCellValue(exportSheet, fmt.Sprintf("F%d", row), summary.TotalProfit.InexactFloat64())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
