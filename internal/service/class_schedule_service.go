package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	appErrors "github.com/noah-isme/uni-registration-api/pkg/errors"
)

type classScheduleRepository interface {
	ListByRoomAndDay(ctx context.Context, roomID string, day models.WeekDay) ([]models.OfferedCourseClassSchedule, error)
	ListByFacultyAndDay(ctx context.Context, facultyID string, day models.WeekDay) ([]models.OfferedCourseClassSchedule, error)
	CreateBatch(ctx context.Context, exec sqlx.ExtContext, schedules []models.OfferedCourseClassSchedule) error
}

type sectionReader interface {
	FindByID(ctx context.Context, id string) (*models.OfferedCourseSection, error)
}

// ClassScheduleService guards room and faculty double-booking.
type ClassScheduleService struct {
	schedules classScheduleRepository
	sections  sectionReader
	tx        txRunner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassScheduleService wires the schedule validator.
func NewClassScheduleService(schedules classScheduleRepository, sections sectionReader, tx txRunner, validate *validator.Validate, logger *zap.Logger) *ClassScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassScheduleService{schedules: schedules, sections: sections, tx: tx, validator: validate, logger: logger}
}

// CheckRoomAvailable fails with CONFLICT when the room is booked during the slot.
func (s *ClassScheduleService) CheckRoomAvailable(ctx context.Context, roomID string, slot TimeSlot) error {
	existing, err := s.schedules.ListByRoomAndDay(ctx, roomID, slot.Day)
	if err != nil {
		return appErrors.Internal(err, "failed to load room schedules")
	}
	if HasTimeConflict(existing, slot) {
		return appErrors.Clone(appErrors.ErrScheduleConflict, "room is already booked")
	}
	return nil
}

// CheckFacultyAvailable fails with CONFLICT when the faculty teaches elsewhere during the slot.
func (s *ClassScheduleService) CheckFacultyAvailable(ctx context.Context, facultyID string, slot TimeSlot) error {
	existing, err := s.schedules.ListByFacultyAndDay(ctx, facultyID, slot.Day)
	if err != nil {
		return appErrors.Internal(err, "failed to load faculty schedules")
	}
	if HasTimeConflict(existing, slot) {
		return appErrors.Clone(appErrors.ErrScheduleConflict, "faculty is already booked")
	}
	return nil
}

// ValidateProposals checks each proposal against the store and against the other proposals.
// It returns the parsed slots in input order.
func (s *ClassScheduleService) ValidateProposals(ctx context.Context, proposals []dto.ClassScheduleInput) ([]TimeSlot, error) {
	slots := make([]TimeSlot, len(proposals))
	for i, p := range proposals {
		slot, err := NewTimeSlot(p.DayOfWeek, p.StartTime, p.EndTime)
		if err != nil {
			return nil, appErrors.WithPath(appErrors.ErrValidation, fmt.Sprintf("classSchedules[%d]", i), err.Error())
		}
		slots[i] = slot
	}

	for i, p := range proposals {
		for j := 0; j < i; j++ {
			if !slots[i].Overlaps(slots[j]) {
				continue
			}
			if proposals[j].RoomID == p.RoomID {
				return nil, appErrors.WithPath(appErrors.ErrScheduleConflict, fmt.Sprintf("classSchedules[%d]", i), "room is booked twice in the request")
			}
			if proposals[j].FacultyID == p.FacultyID {
				return nil, appErrors.WithPath(appErrors.ErrScheduleConflict, fmt.Sprintf("classSchedules[%d]", i), "faculty is booked twice in the request")
			}
		}
		if err := s.CheckRoomAvailable(ctx, p.RoomID, slots[i]); err != nil {
			return nil, err
		}
		if err := s.CheckFacultyAvailable(ctx, p.FacultyID, slots[i]); err != nil {
			return nil, err
		}
	}
	return slots, nil
}

// Create attaches a single validated schedule to an existing section.
func (s *ClassScheduleService) Create(ctx context.Context, req dto.CreateClassScheduleRequest) (*models.OfferedCourseClassSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid class schedule payload")
	}
	section, err := s.sections.FindByID(ctx, req.OfferedCourseSectionID)
	if err != nil {
		return nil, lookupError(err, "offered course section not found", "failed to load offered course section")
	}
	if _, err := s.ValidateProposals(ctx, []dto.ClassScheduleInput{req.ClassScheduleInput}); err != nil {
		return nil, err
	}

	schedule := models.OfferedCourseClassSchedule{
		DayOfWeek:              req.DayOfWeek,
		StartTime:              req.StartTime,
		EndTime:                req.EndTime,
		RoomID:                 req.RoomID,
		FacultyID:              req.FacultyID,
		OfferedCourseSectionID: section.ID,
		SemesterRegistrationID: section.SemesterRegistrationID,
	}
	batch := []models.OfferedCourseClassSchedule{schedule}
	if err := s.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
		return s.schedules.CreateBatch(ctx, exec, batch)
	}); err != nil {
		return nil, appErrors.Internal(err, "failed to create class schedule")
	}
	s.logger.Info("class schedule created",
		zap.String("section_id", section.ID),
		zap.String("room_id", req.RoomID),
		zap.String("faculty_id", req.FacultyID),
		zap.String("day", string(req.DayOfWeek)),
	)
	return &batch[0], nil
}
