package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	"github.com/noah-isme/uni-registration-api/pkg/jobs"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type registrationReader interface {
	FindByID(ctx context.Context, id string) (*models.SemesterRegistration, error)
}

type currentSemesterRepository interface {
	FindByID(ctx context.Context, id string) (*models.AcademicSemester, error)
	SetCurrent(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type confirmedRegistrationLister interface {
	ListConfirmed(ctx context.Context, semesterRegistrationID string) ([]models.StudentSemesterRegistration, error)
}

type studentCourseLister interface {
	ListByStudent(ctx context.Context, exec sqlx.ExtContext, semesterRegistrationID, studentID string) ([]models.RegistrationCourseDetail, error)
}

type enrolledCourseRepository interface {
	EnsureEnrolledCourse(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, academicSemesterID string) (string, bool, error)
	EnsureMark(ctx context.Context, exec sqlx.ExtContext, mark models.StudentEnrolledCourseMark) (bool, error)
	EnsurePayment(ctx context.Context, exec sqlx.ExtContext, payment *models.StudentSemesterPayment) (bool, error)
}

type retryScheduler interface {
	Enqueue(job jobs.Job) error
}

// RolloverRetryJob is the job type that resumes a partially failed rollover.
const RolloverRetryJob = "semester-rollover-resume"

type rolloverRecorder interface {
	ObserveRollover(duration time.Duration, succeeded, failed int)
}

// RolloverConfig carries billing constants and worker pool sizing.
type RolloverConfig struct {
	PerCreditFee        float64
	PartialPaymentRatio float64
	Workers             int
}

// RolloverService starts the academic semester behind an ended registration window.
type RolloverService struct {
	registrations registrationReader
	semesters     currentSemesterRepository
	studentRegs   confirmedRegistrationLister
	courses       studentCourseLister
	enrolled      enrolledCourseRepository
	metrics       rolloverRecorder
	tx            txRunner
	retries       retryScheduler
	cfg           RolloverConfig
	logger        *zap.Logger
}

// NewRolloverService wires the rollover engine.
func NewRolloverService(
	registrations registrationReader,
	semesters currentSemesterRepository,
	studentRegs confirmedRegistrationLister,
	courses studentCourseLister,
	enrolled enrolledCourseRepository,
	metrics rolloverRecorder,
	tx txRunner,
	cfg RolloverConfig,
	logger *zap.Logger,
) *RolloverService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RolloverService{
		registrations: registrations,
		semesters:     semesters,
		studentRegs:   studentRegs,
		courses:       courses,
		enrolled:      enrolled,
		metrics:       metrics,
		tx:            tx,
		cfg:           cfg,
		logger:        logger,
	}
}

// StartNewSemester makes the window's academic semester current and materialises the
// confirmed registrations into enrolled courses, marks and payments.
func (s *RolloverService) StartNewSemester(ctx context.Context, registrationID string) (*dto.RolloverReport, error) {
	reg, sem, err := s.loadEnded(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if sem.IsCurrent {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "academic semester has already started")
	}

	if err := s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		return s.semesters.SetCurrent(ctx, exec, sem.ID)
	}); err != nil {
		return nil, appErrors.Internal(err, "failed to switch current academic semester")
	}
	s.logger.Info("academic semester started", zap.String("academic_semester_id", sem.ID), zap.String("semester_registration_id", reg.ID))

	report, err := s.materializeAll(ctx, reg)
	if report != nil && (err != nil || len(report.Failed) > 0) {
		report.RetryScheduled = s.scheduleRetry(reg.ID)
	}
	return report, err
}

// UseRetryQueue makes StartNewSemester hand partially failed runs to q.
func (s *RolloverService) UseRetryQueue(q retryScheduler) {
	s.retries = q
}

// HandleRetryJob resumes the rollover named by the job payload. It fails while students
// are still failing so the queue backs off and tries again.
func (s *RolloverService) HandleRetryJob(ctx context.Context, job jobs.Job) error {
	report, err := s.ResumeRollover(ctx, job.Payload)
	if err != nil {
		return err
	}
	if n := len(report.Failed); n > 0 {
		return fmt.Errorf("%d students still failing", n)
	}
	return nil
}

func (s *RolloverService) scheduleRetry(registrationID string) bool {
	if s.retries == nil {
		return false
	}
	err := s.retries.Enqueue(jobs.Job{ID: registrationID, Type: RolloverRetryJob, Payload: registrationID})
	switch {
	case err == nil, errors.Is(err, jobs.ErrDuplicate):
		return true
	default:
		s.logger.Warn("failed to schedule rollover retry", zap.String("semester_registration_id", registrationID), zap.Error(err))
		return false
	}
}

// ResumeRollover reruns materialisation for a semester that already started, finishing
// students whose earlier attempt failed. Completed students are left untouched.
func (s *RolloverService) ResumeRollover(ctx context.Context, registrationID string) (*dto.RolloverReport, error) {
	reg, sem, err := s.loadEnded(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if !sem.IsCurrent {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "academic semester has not been started")
	}
	return s.materializeAll(ctx, reg)
}

// MaterializeRegistration creates the payment, enrolled courses and default marks of one
// student in a single transaction. Existing rows are kept, so reruns create nothing new.
func (s *RolloverService) MaterializeRegistration(ctx context.Context, reg *models.SemesterRegistration, ssr models.StudentSemesterRegistration) (dto.MaterializeResult, error) {
	var result dto.MaterializeResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		result = dto.MaterializeResult{}
		if ssr.TotalCreditsTaken > 0 {
			full := float64(ssr.TotalCreditsTaken) * s.cfg.PerCreditFee
			created, err := s.enrolled.EnsurePayment(ctx, exec, &models.StudentSemesterPayment{
				StudentID:            ssr.StudentID,
				AcademicSemesterID:   reg.AcademicSemesterID,
				FullPaymentAmount:    full,
				PartialPaymentAmount: full * s.cfg.PartialPaymentRatio,
				TotalDueAmount:       full,
				TotalPaidAmount:      0,
			})
			if err != nil {
				return err
			}
			result.PaymentCreated = created
		}

		rows, err := s.courses.ListByStudent(ctx, exec, reg.ID, ssr.StudentID)
		if err != nil {
			return err
		}
		for _, row := range rows {
			enrolledID, created, err := s.enrolled.EnsureEnrolledCourse(ctx, exec, ssr.StudentID, row.CourseID, reg.AcademicSemesterID)
			if err != nil {
				return err
			}
			if created {
				result.EnrolledCoursesCreated++
			}
			for _, exam := range models.DefaultExamTypes {
				created, err := s.enrolled.EnsureMark(ctx, exec, models.StudentEnrolledCourseMark{
					StudentID:               ssr.StudentID,
					StudentEnrolledCourseID: enrolledID,
					AcademicSemesterID:      reg.AcademicSemesterID,
					ExamType:                exam,
				})
				if err != nil {
					return err
				}
				if created {
					result.MarksCreated++
				}
			}
		}
		return nil
	})
	if err != nil {
		return dto.MaterializeResult{}, asAppError(err, "failed to materialise student registration")
	}
	return result, nil
}

func (s *RolloverService) loadEnded(ctx context.Context, registrationID string) (*models.SemesterRegistration, *models.AcademicSemester, error) {
	reg, err := s.registrations.FindByID(ctx, registrationID)
	if err != nil {
		return nil, nil, lookupError(err, "semester registration not found", "failed to load semester registration")
	}
	if reg.Status != models.SemesterRegistrationEnded {
		return nil, nil, appErrors.Clone(appErrors.ErrInvalidState, "semester registration has not ended yet")
	}
	sem, err := s.semesters.FindByID(ctx, reg.AcademicSemesterID)
	if err != nil {
		return nil, nil, lookupError(err, "academic semester not found", "failed to load academic semester")
	}
	return reg, sem, nil
}

func (s *RolloverService) materializeAll(ctx context.Context, reg *models.SemesterRegistration) (*dto.RolloverReport, error) {
	start := time.Now()
	confirmed, err := s.studentRegs.ListConfirmed(ctx, reg.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list confirmed registrations")
	}

	report := &dto.RolloverReport{
		SemesterRegistrationID: reg.ID,
		AcademicSemesterID:     reg.AcademicSemesterID,
		Students:               len(confirmed),
	}
	var mu sync.Mutex
	reached := make(map[string]bool, len(confirmed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for _, ssr := range confirmed {
		ssr := ssr
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.MaterializeRegistration(gctx, reg, ssr)

			mu.Lock()
			defer mu.Unlock()
			reached[ssr.StudentID] = true
			if err != nil {
				report.Failed = append(report.Failed, dto.RolloverFailure{StudentID: ssr.StudentID, Error: err.Error()})
				s.logger.Warn("student rollover failed", zap.String("student_id", ssr.StudentID), zap.Error(err))
				return nil
			}
			report.Succeeded++
			report.EnrolledCoursesCreated += res.EnrolledCoursesCreated
			report.MarksCreated += res.MarksCreated
			if res.PaymentCreated {
				report.PaymentsCreated++
			}
			return nil
		})
	}
	waitErr := g.Wait()
	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		// Students never handed to a worker count as failed so a resume picks them up.
		for _, ssr := range confirmed {
			if !reached[ssr.StudentID] {
				report.Failed = append(report.Failed, dto.RolloverFailure{StudentID: ssr.StudentID, Error: "not processed: " + waitErr.Error()})
			}
		}
	}

	report.Duration = time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveRollover(report.Duration, report.Succeeded, len(report.Failed))
	}
	s.logger.Info("semester rollover finished",
		zap.String("semester_registration_id", reg.ID),
		zap.Int("students", report.Students),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", report.Duration),
	)
	if waitErr != nil {
		return report, appErrors.Internal(waitErr, "semester rollover interrupted")
	}
	return report, nil
}
