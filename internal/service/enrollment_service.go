package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type studentDirectory interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

type registrationStatusReader interface {
	FindByStatus(ctx context.Context, statuses ...models.SemesterRegistrationStatus) (*models.SemesterRegistration, error)
}

type sectionSeatRepository interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error)
	IncrementEnrolled(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
	DecrementEnrolled(ctx context.Context, exec sqlx.ExtContext, id string) (bool, error)
}

type registrationCourseRepository interface {
	Find(ctx context.Context, semesterRegistrationID, studentID, offeredCourseID string) (*models.StudentSemesterRegistrationCourse, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, row *models.StudentSemesterRegistrationCourse) (bool, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, key models.StudentSemesterRegistrationCourse) (bool, error)
}

type creditLedger interface {
	AddCredits(ctx context.Context, exec sqlx.ExtContext, studentID, semesterRegistrationID string, credits int) error
	SubtractCredits(ctx context.Context, exec sqlx.ExtContext, studentID, semesterRegistrationID string, credits int) (bool, error)
}

type enrollmentRecorder interface {
	RecordEnrollment(action string, err error)
}

const (
	enrollAction   = "enroll"
	withdrawAction = "withdraw"
)

// EnrollmentService is the only writer of section seat counters and student credit totals.
type EnrollmentService struct {
	students       studentDirectory
	registrations  registrationStatusReader
	offeredCourses offeredCourseReader
	sections       sectionSeatRepository
	enrollments    registrationCourseRepository
	credits        creditLedger
	courseCache    availableCourseInvalidator
	metrics        enrollmentRecorder
	tx             txRunner
	validator      *validator.Validate
	logger         *zap.Logger
}

// EnrollmentServiceDeps groups the collaborators of EnrollmentService.
type EnrollmentServiceDeps struct {
	Students       studentDirectory
	Registrations  registrationStatusReader
	OfferedCourses offeredCourseReader
	Sections       sectionSeatRepository
	Enrollments    registrationCourseRepository
	Credits        creditLedger
	CourseCache    availableCourseInvalidator
	Metrics        enrollmentRecorder
	Tx             txRunner
	Validator      *validator.Validate
	Logger         *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(deps EnrollmentServiceDeps) *EnrollmentService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &EnrollmentService{
		students:       deps.Students,
		registrations:  deps.Registrations,
		offeredCourses: deps.OfferedCourses,
		sections:       deps.Sections,
		enrollments:    deps.Enrollments,
		credits:        deps.Credits,
		courseCache:    deps.CourseCache,
		metrics:        deps.Metrics,
		tx:             deps.Tx,
		validator:      deps.Validator,
		logger:         deps.Logger,
	}
}

type enrollmentTarget struct {
	student *models.Student
	window  *models.SemesterRegistration
	offered *models.OfferedCourseWithCredits
	section *models.OfferedCourseSection
	rowKey  models.StudentSemesterRegistrationCourse
	credits int
}

// Enroll places the student into a section of an offered course in the ongoing window.
func (s *EnrollmentService) Enroll(ctx context.Context, studentAuthID string, req dto.EnrollCourseRequest) (err error) {
	defer func() { s.record(enrollAction, err) }()

	target, err := s.resolve(ctx, studentAuthID, req)
	if err != nil {
		return err
	}
	if target.section.Full() {
		return appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	}
	if _, err := s.enrollments.Find(ctx, target.window.ID, target.student.ID, target.offered.ID); err == nil {
		return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student already enrolled in this course")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Internal(err, "failed to check enrollment")
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		row := target.rowKey
		inserted, err := s.enrollments.Insert(ctx, exec, &row)
		if err != nil {
			return err
		}
		if !inserted {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "student already enrolled in this course")
		}
		seated, err := s.sections.IncrementEnrolled(ctx, exec, target.section.ID)
		if err != nil {
			return err
		}
		if !seated {
			return appErrors.Clone(appErrors.ErrCapacityExceeded, "")
		}
		return s.credits.AddCredits(ctx, exec, target.student.ID, target.window.ID, target.credits)
	})
	if err != nil {
		return asAppError(err, "failed to enroll into course")
	}

	s.afterChange(ctx, target)
	s.logger.Info("student enrolled",
		zap.String("student_id", target.student.ID),
		zap.String("section_id", target.section.ID),
		zap.Int("credits", target.credits),
	)
	return nil
}

// Withdraw reverses an enrollment held in the given section.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentAuthID string, req dto.EnrollCourseRequest) (err error) {
	defer func() { s.record(withdrawAction, err) }()

	target, err := s.resolve(ctx, studentAuthID, req)
	if err != nil {
		return err
	}
	current, err := s.enrollments.Find(ctx, target.window.ID, target.student.ID, target.offered.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidState, "student is not enrolled in this course")
		}
		return appErrors.Internal(err, "failed to load enrollment")
	}
	if current.OfferedCourseSectionID != target.section.ID {
		return appErrors.Clone(appErrors.ErrInvalidState, "student is not enrolled in this section")
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		removed, err := s.enrollments.Delete(ctx, exec, target.rowKey)
		if err != nil {
			return err
		}
		if !removed {
			return appErrors.Clone(appErrors.ErrInvalidState, "student is not enrolled in this course")
		}
		released, err := s.sections.DecrementEnrolled(ctx, exec, target.section.ID)
		if err != nil {
			return err
		}
		if !released {
			return appErrors.Clone(appErrors.ErrInvalidState, "section seat counter is already zero")
		}
		ok, err := s.credits.SubtractCredits(ctx, exec, target.student.ID, target.window.ID, target.credits)
		if err != nil {
			return err
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrInvalidState, "credit total is lower than the withdrawn course")
		}
		return nil
	})
	if err != nil {
		return asAppError(err, "failed to withdraw from course")
	}

	s.afterChange(ctx, target)
	s.logger.Info("student withdrew",
		zap.String("student_id", target.student.ID),
		zap.String("section_id", target.section.ID),
		zap.Int("credits", target.credits),
	)
	return nil
}

func (s *EnrollmentService) resolve(ctx context.Context, studentAuthID string, req dto.EnrollCourseRequest) (*enrollmentTarget, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid enrollment payload")
	}
	student, err := s.students.FindByStudentID(ctx, studentAuthID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	window, err := s.registrations.FindByStatus(ctx, models.SemesterRegistrationOngoing)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "no ongoing semester registration")
		}
		return nil, appErrors.Internal(err, "failed to load semester registration")
	}
	offered, err := s.offeredCourses.FindByID(ctx, req.OfferedCourseID)
	if err != nil {
		return nil, lookupError(err, "offered course not found", "failed to load offered course")
	}
	section, err := s.sections.FindByID(ctx, req.OfferedCourseSectionID)
	if err != nil {
		return nil, lookupError(err, "offered course section not found", "failed to load offered course section")
	}
	if section.OfferedCourseID != offered.ID {
		return nil, appErrors.WithPath(appErrors.ErrInvalidState, "offeredCourseSectionId", "section does not belong to the offered course")
	}
	if offered.SemesterRegistrationID != window.ID {
		return nil, appErrors.WithPath(appErrors.ErrInvalidState, "offeredCourseId", "offered course is not part of the ongoing registration")
	}
	return &enrollmentTarget{
		student: student,
		window:  window,
		offered: offered,
		section: section,
		credits: offered.Credits,
		rowKey: models.StudentSemesterRegistrationCourse{
			SemesterRegistrationID: window.ID,
			StudentID:              student.ID,
			OfferedCourseID:        offered.ID,
			OfferedCourseSectionID: section.ID,
		},
	}, nil
}

// afterChange drops every cached list of the window since each one carries the section's seat count.
func (s *EnrollmentService) afterChange(ctx context.Context, target *enrollmentTarget) {
	if s.courseCache != nil {
		s.courseCache.InvalidateWindow(ctx, target.window.ID)
	}
}

func (s *EnrollmentService) record(action string, err error) {
	if s.metrics != nil {
		s.metrics.RecordEnrollment(action, err)
	}
}
