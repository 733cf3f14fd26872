package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/smanji/recruitflow/internal/models"
)

// WriteRunReport generates an Excel workbook summarizing a pipeline run's
// review-ready bundles
func WriteRunReport(bundles []models.ProcessedBundle, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	sheet := "Processed Emails"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	headers := []string{"Message ID", "Sender", "Subject", "Company", "Matched Skills", "Resume Artifact", "Sent"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "G1", headerStyle)

	f.SetColWidth(sheet, "A", "A", 20)
	f.SetColWidth(sheet, "B", "C", 35)
	f.SetColWidth(sheet, "D", "F", 30)

	for i, b := range bundles {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.OriginalMessage.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), b.OriginalMessage.Sender)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), b.OriginalMessage.Subject)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), b.Opportunity.CompanyInfo)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), strings.Join(b.Resume.MatchedSkills, ", "))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), b.Resume.ArtifactFilename)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), b.Reply.Sent)
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", len(bundles)+3), "Generated: "+time.Now().Format(time.RFC3339))

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}
