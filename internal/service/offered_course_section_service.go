package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	"github.com/noah-isme/uni-registration-api/pkg/database"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type offeredCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourseWithCredits, error)
}

type sectionWriter interface {
	ExistsByTitle(ctx context.Context, offeredCourseID, title string) (bool, error)
	Create(ctx context.Context, exec sqlx.ExtContext, section *models.OfferedCourseSection) error
}

type scheduleProposalValidator interface {
	ValidateProposals(ctx context.Context, proposals []dto.ClassScheduleInput) ([]TimeSlot, error)
}

type scheduleBatchWriter interface {
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, schedules []models.OfferedCourseClassSchedule) error
}

// OfferedCourseSectionService creates sections together with their class schedules.
type OfferedCourseSectionService struct {
	offeredCourses offeredCourseReader
	sections       sectionWriter
	schedules      scheduleBatchWriter
	checker        scheduleProposalValidator
	courseCache    availableCourseInvalidator
	tx             txRunner
	validator      *validator.Validate
	logger         *zap.Logger
}

// NewOfferedCourseSectionService wires the section builder.
func NewOfferedCourseSectionService(
	offeredCourses offeredCourseReader,
	sections sectionWriter,
	schedules scheduleBatchWriter,
	checker scheduleProposalValidator,
	courseCache availableCourseInvalidator,
	tx txRunner,
	validate *validator.Validate,
	logger *zap.Logger,
) *OfferedCourseSectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OfferedCourseSectionService{
		offeredCourses: offeredCourses,
		sections:       sections,
		schedules:      schedules,
		checker:        checker,
		courseCache:    courseCache,
		tx:             tx,
		validator:      validate,
		logger:         logger,
	}
}

// Create validates every proposed schedule up front, then writes the section and schedules atomically.
func (s *OfferedCourseSectionService) Create(ctx context.Context, req dto.CreateOfferedCourseSectionRequest) (*dto.OfferedCourseSectionResponse, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid offered course section payload")
	}

	offered, err := s.offeredCourses.FindByID(ctx, req.OfferedCourseID)
	if err != nil {
		return nil, lookupError(err, "offered course not found", "failed to load offered course")
	}

	exists, err := s.sections.ExistsByTitle(ctx, offered.ID, req.Title)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check section title")
	}
	if exists {
		return nil, appErrors.WithPath(appErrors.ErrConflict, "title", "section title already exists for this offered course")
	}

	if _, err := s.checker.ValidateProposals(ctx, req.ClassSchedules); err != nil {
		return nil, err
	}

	section := &models.OfferedCourseSection{
		Title:                  req.Title,
		MaxCapacity:            req.MaxCapacity,
		OfferedCourseID:        offered.ID,
		SemesterRegistrationID: offered.SemesterRegistrationID,
	}
	schedules := make([]models.OfferedCourseClassSchedule, 0, len(req.ClassSchedules))

	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		if err := s.sections.Create(ctx, exec, section); err != nil {
			return err
		}
		for _, in := range req.ClassSchedules {
			schedules = append(schedules, models.OfferedCourseClassSchedule{
				DayOfWeek:              in.DayOfWeek,
				StartTime:              in.StartTime,
				EndTime:                in.EndTime,
				RoomID:                 in.RoomID,
				FacultyID:              in.FacultyID,
				OfferedCourseSectionID: section.ID,
				SemesterRegistrationID: section.SemesterRegistrationID,
			})
		}
		return s.schedules.CreateBatch(ctx, exec, schedules)
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.WithPath(appErrors.ErrConflict, "title", "section title already exists for this offered course")
		}
		return nil, asAppError(err, "failed to create offered course section")
	}

	if s.courseCache != nil {
		s.courseCache.InvalidateWindow(ctx, section.SemesterRegistrationID)
	}
	s.logger.Info("offered course section created",
		zap.String("section_id", section.ID),
		zap.String("offered_course_id", offered.ID),
		zap.Int("schedules", len(schedules)),
	)
	return &dto.OfferedCourseSectionResponse{OfferedCourseSection: section, ClassSchedules: schedules}, nil
}
