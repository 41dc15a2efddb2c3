package planning

import (
	"io"
	"strings"
	"time"

	"github.com/kendall-kelly/warranty-dispatch-api/models"
)

const (
	csvBOM            = "\ufeff"
	csvFieldSeparator = ";"
	csvRowSeparator   = "\n"
)

// ExportHeader is the first row of every order export
var ExportHeader = []string{"Auftragsnr.", "Titel", "Ort", "Startdatum", "Enddatum", "Status", "Priorität"}

// ToCSVRow projects the seven export columns of an order. Absent values
// become empty strings.
func ToCSVRow(order models.Order) []string {
	return []string{
		order.OrderNumber,
		order.Title,
		deref(order.Location),
		deref(order.StartDate),
		deref(order.EndDate),
		order.Status,
		order.Priority,
	}
}

// ExportRows returns the header followed by one row per order in display order
func ExportRows(orders []models.Order) [][]string {
	rows := make([][]string, 0, len(orders)+1)
	rows = append(rows, ExportHeader)
	for _, order := range orders {
		rows = append(rows, ToCSVRow(order))
	}
	return rows
}

// WriteCSV writes the export with a leading byte-order mark, ';' between
// fields and '\n' between rows. There is no trailing newline and fields are
// written unquoted.
func WriteCSV(w io.Writer, orders []models.Order) error {
	rows := ExportRows(orders)
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, csvFieldSeparator))
	}
	_, err := io.WriteString(w, csvBOM+strings.Join(lines, csvRowSeparator))
	return err
}

// ExportFilename names an export produced at t, using the UTC calendar date
func ExportFilename(t time.Time) string {
	return "auftraege_" + t.UTC().Format(DateLayout) + ".csv"
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
