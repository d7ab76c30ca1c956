// Package xlsx renders document review reports as spreadsheets for the
// registrar's office.
package xlsx

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medcampus/portal/internal/core/domain"
)

type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

const sheetName = "Documents"

var reportHeader = []string{
	"ID", "Owner", "Type", "File", "Status", "Version",
	"Validation score", "Reviewed by", "Reviewed at", "Rejection reason", "Uploaded at",
}

func (e *Exporter) DocumentsReport(docs []domain.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range reportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, doc := range docs {
		values := []any{
			doc.ID,
			doc.OwnerID,
			string(doc.Metadata.Type),
			doc.Metadata.FileName,
			string(doc.Status),
			doc.Version,
			scoreCell(doc.ValidationScore),
			doc.ReviewedBy,
			timeCell(doc.ReviewedAt),
			doc.RejectionReason,
			doc.CreatedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func scoreCell(score *float64) any {
	if score == nil {
		return ""
	}
	return *score
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
