package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// report consumers read the exports in pt-BR spreadsheets
var printer = message.NewPrinter(language.BrazilianPortuguese)

func formatCurrency(v float64) string {
	return printer.Sprintf("R$ %v", number.Decimal(v, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// WriteSummaryCSV streams aggregate rows as CSV with localised
// currency columns.
func WriteSummaryCSV(w io.Writer, groupLabel string, rows []SummaryRow) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write([]string{groupLabel, "count", "total_purchase", "total_current"}); err != nil {
		return err
	}
	for _, row := range rows {
		name := row.GroupName
		if name == "" {
			name = strconv.FormatInt(row.GroupID, 10)
		}
		record := []string{
			name,
			strconv.Itoa(row.Count),
			formatCurrency(row.TotalPurchase),
			formatCurrency(row.TotalCurrent),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDepreciationCSV streams the depreciation listing as CSV.
func WriteDepreciationCSV(w io.Writer, rows []DepreciationRow) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	header := []string{"asset", "serial_no", "acquired_at", "purchase_value", "current_value", "accumulated"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		acquired := ""
		if !row.AcquiredAt.IsZero() {
			acquired = row.AcquiredAt.Format("02/01/2006")
		}
		record := []string{
			row.Name,
			row.SerialNumber,
			acquired,
			formatCurrency(row.PurchaseValue),
			formatCurrency(row.CurrentValue),
			formatCurrency(row.Accumulated),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
