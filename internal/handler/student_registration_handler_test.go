package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type stubStudentFlow struct {
	user      string
	req       dto.EnrollCourseRequest
	enrollErr error
}

func (s *stubStudentFlow) StartRegistration(_ context.Context, id string) (*dto.MyRegistrationResponse, error) {
	s.user = id
	return &dto.MyRegistrationResponse{
		SemesterRegistration:        &models.SemesterRegistration{ID: "reg-1"},
		StudentSemesterRegistration: &models.StudentSemesterRegistration{ID: "ssr-1", StudentID: "stu-1"},
	}, nil
}

func (s *stubStudentFlow) GetMyRegistration(ctx context.Context, id string) (*dto.MyRegistrationResponse, error) {
	return s.StartRegistration(ctx, id)
}

func (s *stubStudentFlow) Confirm(_ context.Context, id string) error {
	s.user = id
	return nil
}

func (s *stubStudentFlow) Enroll(_ context.Context, id string, req dto.EnrollCourseRequest) error {
	s.user, s.req = id, req
	return s.enrollErr
}

func (s *stubStudentFlow) Withdraw(_ context.Context, id string, req dto.EnrollCourseRequest) error {
	s.user, s.req = id, req
	return nil
}

func (s *stubStudentFlow) GetAvailableCourses(_ context.Context, id string) ([]dto.AvailableCourse, error) {
	s.user = id
	return []dto.AvailableCourse{{ID: "oc-1"}}, nil
}

func studentRouter(flow *stubStudentFlow) http.Handler {
	h := NewStudentRegistrationHandler(flow, flow, flow)
	r := newTestRouter()
	r.POST("/start-registration", h.StartRegistration)
	r.GET("/get-my-registration", h.GetMyRegistration)
	r.POST("/enroll-into-course", h.EnrollIntoCourse)
	r.POST("/withdraw-from-course", h.WithdrawFromCourse)
	r.POST("/confirm-my-registration", h.ConfirmMyRegistration)
	r.GET("/get-my-semester-courses", h.GetMySemesterCourses)
	return r
}

var studentHeaders = map[string]string{"X-Test-Role": string(models.RoleStudent), "X-Test-User": "2025-0001"}

func TestStudentEndpointsRequireClaims(t *testing.T) {
	r := studentRouter(&stubStudentFlow{})

	for _, path := range []string{"/start-registration", "/enroll-into-course", "/confirm-my-registration"} {
		rec := performRequest(r, http.MethodPost, path, `{}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestEnrollIntoCourseHandler(t *testing.T) {
	flow := &stubStudentFlow{}
	r := studentRouter(flow)

	rec := performRequest(r, http.MethodPost, "/enroll-into-course", `{"offeredCourseId":"oc-1","offeredCourseSectionId":"sec-1"}`, studentHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student enrolled into course successfully", decode(t, rec).Message)
	assert.Equal(t, "2025-0001", flow.user)
	assert.Equal(t, dto.EnrollCourseRequest{OfferedCourseID: "oc-1", OfferedCourseSectionID: "sec-1"}, flow.req)

	flow.enrollErr = appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	rec = performRequest(r, http.MethodPost, "/enroll-into-course", `{"offeredCourseId":"oc-1","offeredCourseSectionId":"sec-1"}`, studentHeaders)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "CAPACITY_EXCEEDED", env.Error.Code)
	assert.Equal(t, "student capacity is full", env.Message)

	rec = performRequest(r, http.MethodPost, "/enroll-into-course", `not json`, studentHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentSelfServiceMessages(t *testing.T) {
	flow := &stubStudentFlow{}
	r := studentRouter(flow)

	rec := performRequest(r, http.MethodPost, "/withdraw-from-course", `{"offeredCourseId":"oc-1","offeredCourseSectionId":"sec-1"}`, studentHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student withdrew from course successfully", decode(t, rec).Message)

	rec = performRequest(r, http.MethodPost, "/confirm-my-registration", "", studentHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Your registration is confirmed", decode(t, rec).Message)

	rec = performRequest(r, http.MethodPost, "/start-registration", "", studentHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Student semester registration started successfully", decode(t, rec).Message)

	rec = performRequest(r, http.MethodGet, "/get-my-semester-courses", "", studentHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"id":"oc-1"`)
}
