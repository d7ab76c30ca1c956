package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/medcampus/portal/internal/core/domain"
)

func TestDocumentsReportContainsHeaderAndRows(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	score := 87.5
	docs := []domain.Document{
		{
			ID:      "doc-1",
			OwnerID: "alice",
			Metadata: domain.DocumentMetadata{
				Type:     domain.DocTypeTranscript,
				FileName: "transcript.pdf",
			},
			Status:          domain.DocumentApproved,
			Version:         2,
			ValidationScore: &score,
			ReviewedBy:      "dr-lee",
			ReviewedAt:      &now,
			CreatedAt:       now,
		},
	}

	data, err := NewExporter().DocumentsReport(docs)
	if err != nil {
		t.Fatalf("DocumentsReport() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][4] != "Status" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "doc-1" || rows[1][4] != "APPROVED" || rows[1][7] != "dr-lee" {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestDocumentsReportEmptySetStillRenders(t *testing.T) {
	data, err := NewExporter().DocumentsReport(nil)
	if err != nil {
		t.Fatalf("DocumentsReport() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}
