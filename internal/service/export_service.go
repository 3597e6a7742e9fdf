package service

import (
	"fmt"

	"github.com/fadilmartias/resume-screener/internal/model"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

const rankedSheet = "Ranked Candidates"

var exportHeaders = []any{
	"Rank", "Candidate", "Contact", "Final Score", "Unadjusted Score",
	"Quality Multiplier", "Experience (years)", "Executive Summary", "Red Flags", "Screened At",
}

// ExportScreenings renders screenings, already ordered by rank, as an xlsx workbook.
func ExportScreenings(job *model.Job, screenings []model.Screening) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankedSheet); err != nil {
		return nil, err
	}
	f.SetColWidth(rankedSheet, "B", "C", 30)
	f.SetColWidth(rankedSheet, "H", "I", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(rankedSheet, "A1", fmt.Sprintf("Screenings for %s", job.Title))
	if err := f.SetSheetRow(rankedSheet, "A3", &exportHeaders); err != nil {
		return nil, err
	}
	f.SetCellStyle(rankedSheet, "A3", "J3", headerStyle)

	for i, s := range screenings {
		var name, contact string
		var experience float64
		if s.Candidate != nil {
			name = s.Candidate.FullName
			contact = s.Candidate.Contact
			experience = s.Candidate.TotalExperience
		}
		redFlags := ""
		for j, flag := range gjson.GetBytes(s.SkillMatchAnalysis, "quality_assessment.red_flags").Array() {
			if j > 0 {
				redFlags += "; "
			}
			redFlags += flag.String()
		}
		row := []any{
			i + 1,
			name,
			contact,
			s.FinalScore,
			s.UnadjustedScore,
			s.QualityMultiplier,
			experience,
			gjson.GetBytes(s.SkillMatchAnalysis, "executive_summary").String(),
			redFlags,
			s.ScreenedAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(rankedSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
