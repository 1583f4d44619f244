package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
	"github.com/noah-isme/uni-registration-api/pkg/export"
)

type rosterRepository interface {
	ListRoster(ctx context.Context, sectionID string) ([]models.RosterEntry, error)
}

// RosterFile is a rendered section roster.
type RosterFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

var rosterHeaders = []string{"No", "Student ID", "First Name", "Last Name", "Email", "Enrolled At"}

// RosterService renders section rosters for faculty and administrators.
type RosterService struct {
	sections sectionReader
	roster   rosterRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewRosterService constructs a RosterService.
func NewRosterService(sections sectionReader, roster rosterRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{sections: sections, roster: roster, logger: logger, now: time.Now}
}

// Export renders the students enrolled in a section as CSV or PDF.
func (s *RosterService) Export(ctx context.Context, sectionID, rawFormat string) (*RosterFile, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.WithPath(appErrors.ErrValidation, "format", err.Error())
	}
	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		return nil, lookupError(err, "offered course section not found", "failed to load offered course section")
	}
	entries, err := s.roster.ListRoster(ctx, section.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load section roster")
	}

	rows := make([]map[string]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, map[string]string{
			"No":          fmt.Sprintf("%d", i+1),
			"Student ID":  e.UniversityID,
			"First Name":  e.FirstName,
			"Last Name":   e.LastName,
			"Email":       e.Email,
			"Enrolled At": e.EnrolledAt.UTC().Format("2006-01-02"),
		})
	}
	generated := s.now().UTC()
	body, err := export.Render(format, export.Dataset{
		Title:       fmt.Sprintf("Section %s roster", section.Title),
		Subtitle:    fmt.Sprintf("%d of %d seats taken", section.CurrentlyEnrolledStudent, section.MaxCapacity),
		Headers:     rosterHeaders,
		Rows:        rows,
		GeneratedAt: generated,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render section roster")
	}

	s.logger.Debug("section roster exported", zap.String("section_id", section.ID), zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s-%s.%s", section.ID, generated.Format("20060102"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
