package service

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/dto"
	"github.com/noah-isme/course-enrollment-portal/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

// Supported export formats.
const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

var enrollmentHeaders = []string{"ID", "Student", "Course", "Status"}

type csvWriter interface {
	Write(w io.Writer, data export.Dataset) error
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders the filtered enrollment view as a downloadable file.
type ExportService struct {
	csv    csvWriter
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(csv csvWriter, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Filename returns the attachment name for format.
func (s *ExportService) Filename(format ExportFormat) string {
	return fmt.Sprintf("enrollments-%s.%s", s.now().UTC().Format("20060102-150405"), format)
}

// WriteEnrollments renders rows to w in format.
func (s *ExportService) WriteEnrollments(w io.Writer, rows []dto.EnrollmentRow, format ExportFormat) error {
	data := enrollmentDataset(rows, s.now())
	switch format {
	case ExportCSV:
		return s.csv.Write(w, data)
	case ExportPDF:
		payload, err := s.pdf.Render(data, "Enrollments")
		if err != nil {
			return err
		}
		_, err = w.Write(payload)
		return err
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

func enrollmentDataset(rows []dto.EnrollmentRow, now time.Time) export.Dataset {
	data := export.Dataset{
		Headers: enrollmentHeaders,
		Rows:    make([]map[string]string, 0, len(rows)),
		Footer:  fmt.Sprintf("%d enrollments, generated %s", len(rows), now.UTC().Format(time.RFC3339)),
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"ID":      strconv.FormatInt(r.ID, 10),
			"Student": r.StudentName,
			"Course":  r.CourseName,
			"Status":  string(r.Status),
		})
	}
	return data
}
