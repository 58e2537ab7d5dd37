package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/export"
)

type gradebookEnrollmentLister interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

// GradebookFile is a rendered gradebook ready to download.
type GradebookFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// GradebookService exports a course's grades, one row per enrolled student.
type GradebookService struct {
	access      *CourseAccess
	enrollments gradebookEnrollmentLister
	items       gradeItemRepository
	threshold   float64
	logger      *zap.Logger
	now         func() time.Time
}

// NewGradebookService constructs a GradebookService with CSV and PDF output.
func NewGradebookService(access *CourseAccess, enrollments gradebookEnrollmentLister, items gradeItemRepository, threshold float64, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if threshold <= 0 {
		threshold = DefaultTrendThreshold
	}
	return &GradebookService{
		access:      access,
		enrollments: enrollments,
		items:       items,
		threshold:   threshold,
		logger:      logger,
		now:         time.Now,
	}
}

// Export renders the gradebook of courseID in the named format, csv when
// format is blank.
func (s *GradebookService) Export(ctx context.Context, claims *models.SessionClaims, courseID, format string) (*GradebookFile, error) {
	if strings.TrimSpace(format) == "" {
		format = "csv"
	}
	f, ok := export.Lookup(format)
	if !ok {
		return nil, appErrors.FieldError("format", "format must be one of: "+strings.Join(export.Names(), " "))
	}
	course, err := s.access.Teach(ctx, claims, courseID)
	if err != nil {
		return nil, err
	}

	table, err := s.Table(ctx, courseID)
	if err != nil {
		return nil, err
	}
	table.Title = fmt.Sprintf("%s %s - Calificaciones", course.Code, course.Name)
	body, err := export.Render(f, table)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render gradebook")
	}
	s.logger.Info("gradebook exported", zap.String("course_id", courseID), zap.String("format", f.Name()), zap.Int("students", len(table.Rows)))
	return &GradebookFile{
		Name:        fmt.Sprintf("%s-gradebook-%s.%s", strings.ToLower(course.Code), s.now().UTC().Format("20060102"), f.Name()),
		ContentType: f.MediaType(),
		Data:        body,
	}, nil
}

// Table lays out one row per enrolled student: name, email, one column per
// graded item in first-seen order, then average and trend. Ungraded cells
// stay blank.
func (s *GradebookService) Table(ctx context.Context, courseID string) (export.Table, error) {
	roster, err := s.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		return export.Table{}, appErrors.Internal(err, "failed to load roster")
	}

	type line struct {
		name, email, average, trend string
		scores                      map[string]string
	}
	var (
		itemIDs []string
		titles  []string
		seen    = map[string]bool{}
		used    = map[string]bool{"Estudiante": true, "Email": true, "Promedio": true, "Tendencia": true}
		lines   = make([]line, 0, len(roster))
	)
	for _, student := range roster {
		items, err := s.items.ListGradedItems(ctx, student.StudentID, courseID)
		if err != nil {
			return export.Table{}, appErrors.Internal(err, "failed to load grades")
		}
		grade, err := ComputeCourseGrade(items, s.threshold)
		if err != nil {
			return export.Table{}, err
		}
		l := line{
			name:    student.StudentName,
			email:   student.StudentEmail,
			average: strconv.FormatFloat(grade.Average, 'f', 1, 64),
			trend:   string(grade.Trend),
			scores:  make(map[string]string, len(items)),
		}
		for _, item := range items {
			if !seen[item.ItemID] {
				seen[item.ItemID] = true
				itemIDs = append(itemIDs, item.ItemID)
				titles = append(titles, uniqueHeader(item.Title, used))
			}
			if item.Grade != nil {
				l.scores[item.ItemID] = strconv.FormatFloat(*item.Grade, 'f', -1, 64)
			}
		}
		lines = append(lines, l)
	}

	table := export.Table{Columns: append(append([]string{"Estudiante", "Email"}, titles...), "Promedio", "Tendencia")}
	for _, l := range lines {
		row := make([]string, 0, len(table.Columns))
		row = append(row, l.name, l.email)
		for _, id := range itemIDs {
			row = append(row, l.scores[id])
		}
		table.Rows = append(table.Rows, append(row, l.average, l.trend))
	}
	return table, nil
}

func uniqueHeader(title string, used map[string]bool) string {
	header := strings.TrimSpace(title)
	if header == "" {
		header = "Actividad"
	}
	candidate := header
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s (%d)", header, i)
	}
	used[candidate] = true
	return candidate
}
