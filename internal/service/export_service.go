package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mhizterkeyz/resultify-api/internal/models"
	appErrors "github.com/mhizterkeyz/resultify-api/pkg/errors"
	"github.com/mhizterkeyz/resultify-api/pkg/export"
)

// BroadsheetFormat is the rendered file type.
type BroadsheetFormat string

const (
	BroadsheetCSV BroadsheetFormat = "csv"
	BroadsheetPDF BroadsheetFormat = "pdf"
)

type cohortReporter interface {
	ComputeCohortReport(ctx context.Context, q models.CohortQuery) (*models.CohortReport, error)
}

// Broadsheet is a rendered cohort report file.
type Broadsheet struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders cohort reports as broadsheets with one row per student.
type ExportService struct {
	reports cohortReporter
	groups  groupFinder
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewExportService constructs an ExportService.
func NewExportService(reports cohortReporter, groups groupFinder) *ExportService {
	return &ExportService{reports: reports, groups: groups, csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// Broadsheet computes the cohort report and renders it in format.
func (s *ExportService) Broadsheet(ctx context.Context, q models.CohortQuery, format BroadsheetFormat) (*Broadsheet, error) {
	if format == "" {
		format = BroadsheetCSV
	}
	if format != BroadsheetCSV && format != BroadsheetPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	report, err := s.reports.ComputeCohortReport(ctx, q)
	if err != nil {
		return nil, err
	}
	caption := fmt.Sprintf("%d set, %d session, semester %d, %d level", q.StudentSet, q.Year, q.Semester, report.Level)
	if group, err := s.groups.FindByID(ctx, q.GroupID); err == nil {
		caption = fmt.Sprintf("Faculty of %s, %s: %s", group.Faculty, group.Department, caption)
	}
	sheet := export.Sheet{Title: "Result Broadsheet", Captions: []string{caption}, Data: BroadsheetDataset(report)}

	name := fmt.Sprintf("broadsheet-%d-%d-s%d.%s", q.StudentSet, q.Year, q.Semester, format)
	switch format {
	case BroadsheetPDF:
		body, err := s.pdf.Render(sheet)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render broadsheet")
		}
		return &Broadsheet{Filename: name, ContentType: "application/pdf", Body: body}, nil
	default:
		body, err := s.csv.Render(sheet)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render broadsheet")
		}
		return &Broadsheet{Filename: name, ContentType: "text/csv", Body: body}, nil
	}
}

// BroadsheetDataset flattens a cohort report: identity columns, one grade column
// per listed course, then term and cumulative standing.
func BroadsheetDataset(report *models.CohortReport) export.Dataset {
	headers := []string{"matric", "name"}
	for _, b := range append(append([]models.CourseBinding{}, report.Core...), report.Electives...) {
		headers = append(headers, b.Course.Code)
	}
	headers = append(headers, "carryovers", "tcr", "tce", "tgp", "gpa", "prev_gpa", "cgpa", "remarks")

	rows := make([]map[string]string, 0, len(report.Results))
	for _, r := range report.Results {
		row := map[string]string{
			"matric":   r.Matric,
			"name":     r.Name,
			"tcr":      strconv.Itoa(r.TCR),
			"tce":      strconv.Itoa(r.TCE),
			"tgp":      formatFloat(r.TGP),
			"gpa":      formatFloat(r.GPA),
			"prev_gpa": formatFloat(r.Previous.GPA),
			"cgpa":     formatFloat(r.CGPA),
			"remarks":  strings.Join(r.Remarks, " "),
		}
		fillCourseCells(row, r.Core)
		fillCourseCells(row, r.Electives)
		if rs, ok := r.Carryovers.Rows(); ok {
			codes := make([]string, 0, len(rs))
			for _, cr := range rs {
				codes = append(codes, cr.Course+"("+cell(cr)+")")
			}
			row["carryovers"] = strings.Join(codes, " ")
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func fillCourseCells(row map[string]string, rows models.CourseRows) {
	rs, ok := rows.Rows()
	if !ok {
		return
	}
	for _, cr := range rs {
		row[cr.Course] = cell(cr)
	}
}

func cell(cr models.CourseRow) string {
	if cr.Grade == nil {
		return cr.Remark
	}
	return fmt.Sprintf("%d%s", cr.Score, *cr.Grade)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
