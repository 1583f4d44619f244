package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type completedCourseReader interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	ListCompletedCourseIDs(ctx context.Context, studentID string) ([]string, error)
}

type takenCourseReader interface {
	ListOfferedCourseIDs(ctx context.Context, semesterRegistrationID, studentID string) ([]string, error)
}

type offeredCatalogReader interface {
	ListCatalog(ctx context.Context, semesterRegistrationID, departmentID string) ([]dto.OfferedCourseCatalogRow, error)
	ListPrerequisites(ctx context.Context, courseIDs []string) ([]models.CoursePrerequisite, error)
}

type sectionLister interface {
	ListByOfferedCourses(ctx context.Context, offeredCourseIDs []string) ([]models.OfferedCourseSection, error)
}

type scheduleDetailLister interface {
	ListDetailsBySections(ctx context.Context, sectionIDs []string) ([]models.ClassScheduleDetail, error)
}

type courseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// availableCourseInvalidator drops cached eligibility after writes that change it.
type availableCourseInvalidator interface {
	InvalidateStudent(ctx context.Context, semesterRegistrationID, studentID string)
	InvalidateWindow(ctx context.Context, semesterRegistrationID string)
}

const availableCoursesKeyPrefix = "available-courses"

// AvailableCourseService resolves the offered courses a student may still enroll into.
type AvailableCourseService struct {
	students      completedCourseReader
	registrations registrationStatusReader
	taken         takenCourseReader
	catalog       offeredCatalogReader
	sections      sectionLister
	schedules     scheduleDetailLister
	cache         courseCache
	ttl           time.Duration
	logger        *zap.Logger
}

// NewAvailableCourseService wires the eligibility resolver. cache may be nil.
func NewAvailableCourseService(
	students completedCourseReader,
	registrations registrationStatusReader,
	taken takenCourseReader,
	catalog offeredCatalogReader,
	sections sectionLister,
	schedules scheduleDetailLister,
	cache courseCache,
	ttl time.Duration,
	logger *zap.Logger,
) *AvailableCourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailableCourseService{
		students:      students,
		registrations: registrations,
		taken:         taken,
		catalog:       catalog,
		sections:      sections,
		schedules:     schedules,
		cache:         cache,
		ttl:           ttl,
		logger:        logger,
	}
}

// GetAvailableCourses lists eligible offered courses with their sections and schedules.
func (s *AvailableCourseService) GetAvailableCourses(ctx context.Context, studentAuthID string) ([]dto.AvailableCourse, error) {
	student, err := s.students.FindByStudentID(ctx, studentAuthID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	window, err := s.registrations.FindByStatus(ctx, models.SemesterRegistrationOngoing, models.SemesterRegistrationUpcoming)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "no semester registration is open")
		}
		return nil, appErrors.Internal(err, "failed to load semester registration")
	}

	key := availableCoursesKey(window.ID, student.ID)
	if s.cache != nil {
		var cached []dto.AvailableCourse
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return cached, nil
		}
	}

	var (
		completed []string
		taken     []string
		catalog   []dto.OfferedCourseCatalogRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.students.ListCompletedCourseIDs(gctx, student.ID)
		completed = ids
		return err
	})
	g.Go(func() error {
		ids, err := s.taken.ListOfferedCourseIDs(gctx, window.ID, student.ID)
		taken = ids
		return err
	})
	g.Go(func() error {
		rows, err := s.catalog.ListCatalog(gctx, window.ID, student.AcademicDepartmentID)
		catalog = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Internal(err, "failed to load course eligibility inputs")
	}

	courseIDs := make([]string, 0, len(catalog))
	for _, row := range catalog {
		courseIDs = append(courseIDs, row.CourseID)
	}
	edges, err := s.catalog.ListPrerequisites(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load prerequisites")
	}

	prereqs := groupPrerequisites(edges)
	eligible := FilterEligible(catalog, prereqs, toSet(completed), toSet(taken))
	courses, err := s.expand(ctx, window.ID, eligible, prereqs)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, courses, s.ttl)
	}
	return courses, nil
}

// InvalidateStudent drops one student's cached list for a window.
func (s *AvailableCourseService) InvalidateStudent(ctx context.Context, semesterRegistrationID, studentID string) {
	if s == nil || s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, availableCoursesKey(semesterRegistrationID, studentID))
}

// InvalidateWindow drops every cached list for a window.
func (s *AvailableCourseService) InvalidateWindow(ctx context.Context, semesterRegistrationID string) {
	if s == nil || s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("%s:%s:*", availableCoursesKeyPrefix, semesterRegistrationID))
}

func (s *AvailableCourseService) expand(ctx context.Context, windowID string, rows []dto.OfferedCourseCatalogRow, prereqs map[string][]string) ([]dto.AvailableCourse, error) {
	if len(rows) == 0 {
		return []dto.AvailableCourse{}, nil
	}
	offeredIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		offeredIDs = append(offeredIDs, row.OfferedCourseID)
	}
	sections, err := s.sections.ListByOfferedCourses(ctx, offeredIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load offered course sections")
	}
	sectionIDs := make([]string, 0, len(sections))
	for _, sec := range sections {
		sectionIDs = append(sectionIDs, sec.ID)
	}
	details, err := s.schedules.ListDetailsBySections(ctx, sectionIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class schedules")
	}

	schedulesBySection := make(map[string][]models.ClassScheduleDetail, len(sections))
	for _, d := range details {
		schedulesBySection[d.OfferedCourseSectionID] = append(schedulesBySection[d.OfferedCourseSectionID], d)
	}
	sectionsByOffered := make(map[string][]dto.AvailableSection, len(rows))
	for _, sec := range sections {
		scheds := schedulesBySection[sec.ID]
		if scheds == nil {
			scheds = []models.ClassScheduleDetail{}
		}
		sectionsByOffered[sec.OfferedCourseID] = append(sectionsByOffered[sec.OfferedCourseID], dto.AvailableSection{
			OfferedCourseSection: sec,
			ClassSchedules:       scheds,
		})
	}

	out := make([]dto.AvailableCourse, 0, len(rows))
	for _, row := range rows {
		secs := sectionsByOffered[row.OfferedCourseID]
		if secs == nil {
			secs = []dto.AvailableSection{}
		}
		pre := prereqs[row.CourseID]
		if pre == nil {
			pre = []string{}
		}
		out = append(out, dto.AvailableCourse{
			ID:                     row.OfferedCourseID,
			SemesterRegistrationID: windowID,
			Course: dto.AvailableCourseRef{
				ID:            row.CourseID,
				Title:         row.Title,
				Code:          row.Code,
				Credits:       row.Credits,
				Prerequisites: pre,
			},
			Sections: secs,
		})
	}
	return out, nil
}

// FilterEligible keeps offered courses that are not completed, not already taken in the
// window, and whose prerequisites are all completed.
func FilterEligible(catalog []dto.OfferedCourseCatalogRow, prereqs map[string][]string, completed, taken map[string]struct{}) []dto.OfferedCourseCatalogRow {
	out := make([]dto.OfferedCourseCatalogRow, 0, len(catalog))
	for _, row := range catalog {
		if _, done := completed[row.CourseID]; done {
			continue
		}
		if _, held := taken[row.OfferedCourseID]; held {
			continue
		}
		ready := true
		for _, pre := range prereqs[row.CourseID] {
			if _, ok := completed[pre]; !ok {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, row)
		}
	}
	return out
}

func groupPrerequisites(edges []models.CoursePrerequisite) map[string][]string {
	grouped := make(map[string][]string, len(edges))
	for _, e := range edges {
		grouped[e.CourseID] = append(grouped[e.CourseID], e.PrerequisiteID)
	}
	return grouped
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func availableCoursesKey(semesterRegistrationID, studentID string) string {
	return fmt.Sprintf("%s:%s:%s", availableCoursesKeyPrefix, semesterRegistrationID, studentID)
}
