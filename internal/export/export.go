package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stolik/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter renders a restaurant's full booking history into an XLSX workbook.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

var columns = []string{"Created", "Slot (UTC)", "Table", "Guest", "Phone", "Party", "Status", "Decline reason"}

func buildWorkbook(restaurant *models.Restaurant, bookings []*models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Bookings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s — bookings as of %s",
		restaurant.Name, time.Now().UTC().Format("2006-01-02 15:04")))

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheet, cell, col)
	}

	for row, b := range bookings {
		values := []any{
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.DateTime.Format("2006-01-02 15:04"),
			b.TableLabel,
			b.GuestName,
			b.GuestPhone,
			b.GuestCount,
			b.Status,
			b.DeclineReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 18)
	_ = f.SetColWidth(sheet, "C", "E", 16)
	_ = f.SetColWidth(sheet, "H", "H", 40)

	lastCol, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.MergeCell(sheet, "A1", lastCol)

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheet, "A1", "A1", style)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheet, "A2", lastCol[:1]+"2", headerStyle)

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

// Workbook returns the rendered XLSX as bytes, for streaming over HTTP.
func (e *Exporter) Workbook(restaurant *models.Restaurant, bookings []*models.Booking) ([]byte, error) {
	f, err := buildWorkbook(restaurant, bookings)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWorkbook saves the workbook into the export directory and returns the
// file path.
func (e *Exporter) WriteWorkbook(restaurant *models.Restaurant, bookings []*models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := buildWorkbook(restaurant, bookings)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx", restaurant.ID, time.Now().Format("2006-01-02"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("bookings workbook created")
	return filePath, nil
}
