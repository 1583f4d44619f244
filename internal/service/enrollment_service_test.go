package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

var enrollReq = dto.EnrollCourseRequest{OfferedCourseID: "oc-1", OfferedCourseSectionID: "sec-1"}

type enrollmentCounter struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *enrollmentCounter) RecordEnrollment(action string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	outcome := "success"
	if err != nil {
		outcome = string(appErrors.KindOf(err))
	}
	c.outcomes[action+":"+outcome]++
}

type invalidationSpy struct {
	students []string
	windows  []string
}

func (s *invalidationSpy) InvalidateStudent(_ context.Context, windowID, studentID string) {
	s.students = append(s.students, windowID+"/"+studentID)
}

func (s *invalidationSpy) InvalidateWindow(_ context.Context, windowID string) {
	s.windows = append(s.windows, windowID)
}

func TestEnrollTakesSeatAndCredits(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 2)
	spy := &invalidationSpy{}
	counter := &enrollmentCounter{}
	svc := NewEnrollmentService(EnrollmentServiceDeps{
		Students:       fakeStudents{w},
		Registrations:  fakeWindows{w},
		OfferedCourses: fakeOffered{w},
		Sections:       fakeSections{w},
		Enrollments:    fakeRegCourses{w},
		Credits:        fakeStudentRegs{w},
		CourseCache:    spy,
		Metrics:        counter,
		Tx:             fakeTx{w},
	})

	require.NoError(t, svc.Enroll(context.Background(), "S-1", enrollReq))

	assert.Equal(t, 1, w.sections["sec-1"].CurrentlyEnrolledStudent)
	assert.Equal(t, 3, w.studentRegs[regKey("stu-1", "reg-1")].TotalCreditsTaken)
	assert.Contains(t, w.regCourses, regKey("reg-1", "stu-1", "oc-1"))
	assert.Equal(t, []string{"reg-1"}, spy.windows)
	assert.Empty(t, spy.students)
	assert.Equal(t, 1, counter.outcomes["enroll:success"])
}

func TestWithdrawDropsCachedListsOfWholeWindow(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 2)
	addStudent(w, "S-2", "stu-2")
	spy := &invalidationSpy{}
	svc := NewEnrollmentService(EnrollmentServiceDeps{
		Students:       fakeStudents{w},
		Registrations:  fakeWindows{w},
		OfferedCourses: fakeOffered{w},
		Sections:       fakeSections{w},
		Enrollments:    fakeRegCourses{w},
		Credits:        fakeStudentRegs{w},
		CourseCache:    spy,
		Tx:             fakeTx{w},
	})

	require.NoError(t, svc.Enroll(context.Background(), "S-1", enrollReq))
	require.NoError(t, svc.Withdraw(context.Background(), "S-1", enrollReq))

	// S-2 sees the seat counter move, so no per-student entry may survive.
	assert.Equal(t, []string{"reg-1", "reg-1"}, spy.windows)
	assert.Empty(t, spy.students)
	assert.Equal(t, 0, w.sections["sec-1"].CurrentlyEnrolledStudent)
}

func TestEnrollRejectsSecondSectionOfSameCourse(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 5)
	svc := newEnrollmentFixture(w)

	require.NoError(t, svc.Enroll(context.Background(), "S-1", enrollReq))
	err := svc.Enroll(context.Background(), "S-1", enrollReq)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyEnrolled)
	assert.Equal(t, 1, w.sections["sec-1"].CurrentlyEnrolledStudent)
	assert.Equal(t, 3, w.studentRegs[regKey("stu-1", "reg-1")].TotalCreditsTaken)
}

func TestEnrollFullSection(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 1)
	addStudent(w, "S-2", "stu-2")
	svc := newEnrollmentFixture(w)

	require.NoError(t, svc.Enroll(context.Background(), "S-1", enrollReq))
	err := svc.Enroll(context.Background(), "S-2", enrollReq)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.NotContains(t, w.regCourses, regKey("reg-1", "stu-2", "oc-1"))
}

func TestEnrollRequiresOngoingWindow(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 1)
	reg := w.windows["reg-1"]
	reg.Status = "UPCOMING"
	w.windows["reg-1"] = reg
	svc := newEnrollmentFixture(w)

	err := svc.Enroll(context.Background(), "S-1", enrollReq)
	assert.Equal(t, appErrors.KindInvalidState, appErrors.KindOf(err))
}

func TestEnrollValidatesSectionOwnership(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 1)
	sec := w.sections["sec-1"]
	sec.ID = "sec-other"
	sec.OfferedCourseID = "oc-other"
	w.sections["sec-other"] = sec
	svc := newEnrollmentFixture(w)

	err := svc.Enroll(context.Background(), "S-1", dto.EnrollCourseRequest{OfferedCourseID: "oc-1", OfferedCourseSectionID: "sec-other"})
	require.Error(t, err)
	assert.Equal(t, "offeredCourseSectionId", appErrors.FromError(err).Path)

	err = svc.Enroll(context.Background(), "S-1", dto.EnrollCourseRequest{OfferedCourseID: "oc-1"})
	assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err))
}

func TestEnrollUnknownStudent(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 1)
	svc := newEnrollmentFixture(w)

	err := svc.Enroll(context.Background(), "nobody", enrollReq)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestConcurrentEnrollHasSingleWinner(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 1)
	const racers = 20
	for i := 0; i < racers; i++ {
		addStudent(w, fmt.Sprintf("R-%02d", i), fmt.Sprintf("racer-%02d", i))
	}
	svc := newEnrollmentFixture(w)

	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Enroll(context.Background(), fmt.Sprintf("R-%02d", i), enrollReq)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, w.sections["sec-1"].CurrentlyEnrolledStudent)
	assert.Len(t, w.regCourses, 1)

	credits := 0
	for _, ssr := range w.studentRegs {
		credits += ssr.TotalCreditsTaken
	}
	assert.Equal(t, 3, credits)
}

func TestWithdrawReleasesSeatAndCredits(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 2)
	svc := newEnrollmentFixture(w)
	ctx := context.Background()

	require.NoError(t, svc.Enroll(ctx, "S-1", enrollReq))
	require.NoError(t, svc.Withdraw(ctx, "S-1", enrollReq))

	assert.Equal(t, 0, w.sections["sec-1"].CurrentlyEnrolledStudent)
	assert.Equal(t, 0, w.studentRegs[regKey("stu-1", "reg-1")].TotalCreditsTaken)
	assert.Empty(t, w.regCourses)

	err := svc.Withdraw(ctx, "S-1", enrollReq)
	assert.Equal(t, appErrors.KindInvalidState, appErrors.KindOf(err))
}

func TestWithdrawFromOtherSectionIsRejected(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 2)
	sec := w.sections["sec-1"]
	sec.ID = "sec-2"
	sec.Title = "B"
	w.sections["sec-2"] = sec
	svc := newEnrollmentFixture(w)
	ctx := context.Background()

	require.NoError(t, svc.Enroll(ctx, "S-1", enrollReq))
	err := svc.Withdraw(ctx, "S-1", dto.EnrollCourseRequest{OfferedCourseID: "oc-1", OfferedCourseSectionID: "sec-2"})
	assert.Equal(t, appErrors.KindInvalidState, appErrors.KindOf(err))
	assert.Equal(t, 1, w.sections["sec-1"].CurrentlyEnrolledStudent)
}

func TestCreditTotalsMatchEnrollments(t *testing.T) {
	w := newWorld()
	seedOngoingWindow(w, 10)
	w.offered["oc-2"] = w.offered["oc-1"]
	oc2 := w.offered["oc-2"]
	oc2.ID = "oc-2"
	oc2.CourseID = "c-2"
	oc2.Credits = 4
	w.offered["oc-2"] = oc2
	w.sections["sec-2"] = w.sections["sec-1"]
	sec2 := w.sections["sec-2"]
	sec2.ID = "sec-2"
	sec2.OfferedCourseID = "oc-2"
	w.sections["sec-2"] = sec2
	svc := newEnrollmentFixture(w)
	ctx := context.Background()
	second := dto.EnrollCourseRequest{OfferedCourseID: "oc-2", OfferedCourseSectionID: "sec-2"}

	steps := []struct {
		enroll bool
		req    dto.EnrollCourseRequest
	}{
		{true, enrollReq}, {true, second}, {false, enrollReq}, {true, enrollReq}, {false, second},
	}
	for _, step := range steps {
		if step.enroll {
			require.NoError(t, svc.Enroll(ctx, "S-1", step.req))
		} else {
			require.NoError(t, svc.Withdraw(ctx, "S-1", step.req))
		}

		want := 0
		for _, row := range w.regCourses {
			want += w.offered[row.OfferedCourseID].Credits
		}
		assert.Equal(t, want, w.studentRegs[regKey("stu-1", "reg-1")].TotalCreditsTaken)
		for id, sec := range w.sections {
			seats := 0
			for _, row := range w.regCourses {
				if row.OfferedCourseSectionID == id {
					seats++
				}
			}
			assert.Equal(t, seats, sec.CurrentlyEnrolledStudent, id)
		}
	}
}
