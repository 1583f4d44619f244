package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

const classScheduleColumns = `id, day_of_week, start_time, end_time, room_id, faculty_id, offered_course_section_id, semester_registration_id, created_at, updated_at`

// ClassScheduleRepository persists weekly section meetings.
type ClassScheduleRepository struct {
	db *sqlx.DB
}

// NewClassScheduleRepository constructs the repository.
func NewClassScheduleRepository(db *sqlx.DB) *ClassScheduleRepository {
	return &ClassScheduleRepository{db: db}
}

// ListByRoomAndDay returns schedules occupying room on day.
func (r *ClassScheduleRepository) ListByRoomAndDay(ctx context.Context, roomID string, day models.WeekDay) ([]models.OfferedCourseClassSchedule, error) {
	query := `SELECT ` + classScheduleColumns + ` FROM offered_course_class_schedules WHERE room_id = $1 AND day_of_week = $2`
	var schedules []models.OfferedCourseClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, roomID, day); err != nil {
		return nil, fmt.Errorf("list room schedules: %w", err)
	}
	return schedules, nil
}

// ListByFacultyAndDay returns schedules taught by faculty on day.
func (r *ClassScheduleRepository) ListByFacultyAndDay(ctx context.Context, facultyID string, day models.WeekDay) ([]models.OfferedCourseClassSchedule, error) {
	query := `SELECT ` + classScheduleColumns + ` FROM offered_course_class_schedules WHERE faculty_id = $1 AND day_of_week = $2`
	var schedules []models.OfferedCourseClassSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, facultyID, day); err != nil {
		return nil, fmt.Errorf("list faculty schedules: %w", err)
	}
	return schedules, nil
}

// ListDetailsBySections returns schedules with room, building and faculty context.
func (r *ClassScheduleRepository) ListDetailsBySections(ctx context.Context, sectionIDs []string) ([]models.ClassScheduleDetail, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT s.id, s.day_of_week, s.start_time, s.end_time, s.room_id, s.faculty_id, s.offered_course_section_id, s.semester_registration_id,
	s.created_at, s.updated_at, rm.room_number, rm.floor, b.id AS building_id, b.title AS building_title,
	CONCAT(f.first_name, ' ', f.last_name) AS faculty_name
FROM offered_course_class_schedules s
JOIN rooms rm ON rm.id = s.room_id
JOIN buildings b ON b.id = rm.building_id
JOIN faculties f ON f.id = s.faculty_id
WHERE s.offered_course_section_id IN (?)
ORDER BY s.day_of_week, s.start_time`, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("build schedule detail query: %w", err)
	}
	var details []models.ClassScheduleDetail
	if err := r.db.SelectContext(ctx, &details, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list schedule details: %w", err)
	}
	return details, nil
}

// CreateBatch inserts schedules within exec.
func (r *ClassScheduleRepository) CreateBatch(ctx context.Context, exec sqlx.ExtContext, schedules []models.OfferedCourseClassSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	if exec == nil {
		exec = r.db
	}
	now := time.Now().UTC()
	for i := range schedules {
		if schedules[i].ID == "" {
			schedules[i].ID = uuid.NewString()
		}
		schedules[i].CreatedAt = now
		schedules[i].UpdatedAt = now
	}
	const query = `INSERT INTO offered_course_class_schedules (id, day_of_week, start_time, end_time, room_id, faculty_id, offered_course_section_id, semester_registration_id, created_at, updated_at)
VALUES (:id, :day_of_week, :start_time, :end_time, :room_id, :faculty_id, :offered_course_section_id, :semester_registration_id, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, schedules); err != nil {
		return fmt.Errorf("create class schedules: %w", err)
	}
	return nil
}
