package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-registration-api/internal/dto"
	"github.com/noah-isme/uni-registration-api/internal/models"
	"github.com/noah-isme/uni-registration-api/pkg/database"
)

// world is an in-memory store shared by the fake repositories below.
type world struct {
	mu   sync.Mutex
	txMu sync.Mutex

	windows     map[string]models.SemesterRegistration
	semesters   map[string]models.AcademicSemester
	students    map[string]models.Student
	completed   map[string][]string
	offered     map[string]models.OfferedCourseWithCredits
	catalog     map[string]dto.OfferedCourseCatalogRow
	prereqs     []models.CoursePrerequisite
	sections    map[string]models.OfferedCourseSection
	regCourses  map[string]models.StudentSemesterRegistrationCourse
	studentRegs map[string]models.StudentSemesterRegistration
	enrolled    map[string]string
	marks       map[string]bool
	payments    map[string]models.StudentSemesterPayment
	schedules   []models.OfferedCourseClassSchedule
	roster      map[string][]models.RosterEntry

	failStudents map[string]bool
	deleteErr    error
	txCalls      int
}

func newWorld() *world {
	return &world{
		windows:      map[string]models.SemesterRegistration{},
		semesters:    map[string]models.AcademicSemester{},
		students:     map[string]models.Student{},
		completed:    map[string][]string{},
		offered:      map[string]models.OfferedCourseWithCredits{},
		catalog:      map[string]dto.OfferedCourseCatalogRow{},
		sections:     map[string]models.OfferedCourseSection{},
		regCourses:   map[string]models.StudentSemesterRegistrationCourse{},
		studentRegs:  map[string]models.StudentSemesterRegistration{},
		enrolled:     map[string]string{},
		marks:        map[string]bool{},
		payments:     map[string]models.StudentSemesterPayment{},
		roster:       map[string][]models.RosterEntry{},
		failStudents: map[string]bool{},
	}
}

type worldSnapshot struct {
	windows     map[string]models.SemesterRegistration
	semesters   map[string]models.AcademicSemester
	sections    map[string]models.OfferedCourseSection
	regCourses  map[string]models.StudentSemesterRegistrationCourse
	studentRegs map[string]models.StudentSemesterRegistration
	enrolled    map[string]string
	marks       map[string]bool
	payments    map[string]models.StudentSemesterPayment
	schedules   []models.OfferedCourseClassSchedule
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (w *world) snapshot() worldSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return worldSnapshot{
		windows:     copyMap(w.windows),
		semesters:   copyMap(w.semesters),
		sections:    copyMap(w.sections),
		regCourses:  copyMap(w.regCourses),
		studentRegs: copyMap(w.studentRegs),
		enrolled:    copyMap(w.enrolled),
		marks:       copyMap(w.marks),
		payments:    copyMap(w.payments),
		schedules:   append([]models.OfferedCourseClassSchedule(nil), w.schedules...),
	}
}

func (w *world) restore(s worldSnapshot) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.windows = s.windows
	w.semesters = s.semesters
	w.sections = s.sections
	w.regCourses = s.regCourses
	w.studentRegs = s.studentRegs
	w.enrolled = s.enrolled
	w.marks = s.marks
	w.payments = s.payments
	w.schedules = s.schedules
}

// fakeTx serialises units of work and restores the world when one fails.
type fakeTx struct{ w *world }

func (f fakeTx) WithinTx(ctx context.Context, fn database.TxFunc) error {
	f.w.txMu.Lock()
	defer f.w.txMu.Unlock()
	f.w.mu.Lock()
	f.w.txCalls++
	f.w.mu.Unlock()

	snap := f.w.snapshot()
	if err := fn(ctx, nil); err != nil {
		f.w.restore(snap)
		return err
	}
	return nil
}

func regKey(parts ...string) string {
	key := ""
	for i, p := range parts {
		if i > 0 {
			key += "|"
		}
		key += p
	}
	return key
}

type fakeWindows struct{ w *world }

func (f fakeWindows) FindByID(_ context.Context, id string) (*models.SemesterRegistration, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	reg, ok := f.w.windows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &reg, nil
}

func (f fakeWindows) FindByIDForUpdate(ctx context.Context, _ sqlx.ExtContext, id string) (*models.SemesterRegistration, error) {
	return f.FindByID(ctx, id)
}

func (f fakeWindows) FindByStatus(_ context.Context, statuses ...models.SemesterRegistrationStatus) (*models.SemesterRegistration, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, reg := range f.w.windows {
		for _, s := range statuses {
			if reg.Status == s {
				out := reg
				return &out, nil
			}
		}
	}
	return nil, sql.ErrNoRows
}

func (f fakeWindows) ExistsActive(_ context.Context) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, reg := range f.w.windows {
		if reg.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeWindows) List(_ context.Context, filter models.SemesterRegistrationFilter) ([]models.SemesterRegistration, int, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.SemesterRegistration
	for _, reg := range f.w.windows {
		if filter.Status != "" && reg.Status != filter.Status {
			continue
		}
		out = append(out, reg)
	}
	return out, len(out), nil
}

func (f fakeWindows) Create(_ context.Context, reg *models.SemesterRegistration) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	f.w.windows[reg.ID] = *reg
	return nil
}

func (f fakeWindows) Update(_ context.Context, _ sqlx.ExtContext, reg *models.SemesterRegistration) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	f.w.windows[reg.ID] = *reg
	return nil
}

func (f fakeWindows) Delete(_ context.Context, id string) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.deleteErr != nil {
		return false, f.w.deleteErr
	}
	if _, ok := f.w.windows[id]; !ok {
		return false, nil
	}
	delete(f.w.windows, id)
	return true, nil
}

type fakeSemesters struct{ w *world }

func (f fakeSemesters) FindByID(_ context.Context, id string) (*models.AcademicSemester, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	sem, ok := f.w.semesters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sem, nil
}

func (f fakeSemesters) SetCurrent(_ context.Context, _ sqlx.ExtContext, id string) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if _, ok := f.w.semesters[id]; !ok {
		return errors.New("no row updated")
	}
	for k, sem := range f.w.semesters {
		sem.IsCurrent = k == id
		f.w.semesters[k] = sem
	}
	return nil
}

type fakeStudents struct{ w *world }

func (f fakeStudents) FindByStudentID(_ context.Context, studentID string) (*models.Student, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	st, ok := f.w.students[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &st, nil
}

func (f fakeStudents) ListCompletedCourseIDs(_ context.Context, studentID string) ([]string, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return append([]string(nil), f.w.completed[studentID]...), nil
}

type fakeOffered struct{ w *world }

func (f fakeOffered) FindByID(_ context.Context, id string) (*models.OfferedCourseWithCredits, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	oc, ok := f.w.offered[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &oc, nil
}

func (f fakeOffered) ListCatalog(_ context.Context, semesterRegistrationID, departmentID string) ([]dto.OfferedCourseCatalogRow, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var rows []dto.OfferedCourseCatalogRow
	for id, row := range f.w.catalog {
		oc := f.w.offered[id]
		if oc.SemesterRegistrationID == semesterRegistrationID && oc.AcademicDepartmentID == departmentID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows, nil
}

func (f fakeOffered) ListPrerequisites(_ context.Context, courseIDs []string) ([]models.CoursePrerequisite, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	wanted := toSet(courseIDs)
	var out []models.CoursePrerequisite
	for _, e := range f.w.prereqs {
		if _, ok := wanted[e.CourseID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeSections struct{ w *world }

func (f fakeSections) FindByID(_ context.Context, id string) (*models.OfferedCourseSection, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	sec, ok := f.w.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sec, nil
}

func (f fakeSections) ExistsByTitle(_ context.Context, offeredCourseID, title string) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for _, sec := range f.w.sections {
		if sec.OfferedCourseID == offeredCourseID && sec.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeSections) Create(_ context.Context, _ sqlx.ExtContext, section *models.OfferedCourseSection) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	f.w.sections[section.ID] = *section
	return nil
}

func (f fakeSections) IncrementEnrolled(_ context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	sec, ok := f.w.sections[id]
	if !ok || sec.CurrentlyEnrolledStudent >= sec.MaxCapacity {
		return false, nil
	}
	sec.CurrentlyEnrolledStudent++
	f.w.sections[id] = sec
	return true, nil
}

func (f fakeSections) DecrementEnrolled(_ context.Context, _ sqlx.ExtContext, id string) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	sec, ok := f.w.sections[id]
	if !ok || sec.CurrentlyEnrolledStudent <= 0 {
		return false, nil
	}
	sec.CurrentlyEnrolledStudent--
	f.w.sections[id] = sec
	return true, nil
}

func (f fakeSections) ListByOfferedCourses(_ context.Context, offeredCourseIDs []string) ([]models.OfferedCourseSection, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	wanted := toSet(offeredCourseIDs)
	var out []models.OfferedCourseSection
	for _, sec := range f.w.sections {
		if _, ok := wanted[sec.OfferedCourseID]; ok {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

type fakeRegCourses struct{ w *world }

func (f fakeRegCourses) Find(_ context.Context, semesterRegistrationID, studentID, offeredCourseID string) (*models.StudentSemesterRegistrationCourse, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	row, ok := f.w.regCourses[regKey(semesterRegistrationID, studentID, offeredCourseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (f fakeRegCourses) Insert(_ context.Context, _ sqlx.ExtContext, row *models.StudentSemesterRegistrationCourse) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	key := regKey(row.SemesterRegistrationID, row.StudentID, row.OfferedCourseID)
	if _, exists := f.w.regCourses[key]; exists {
		return false, nil
	}
	row.CreatedAt = time.Now()
	f.w.regCourses[key] = *row
	return true, nil
}

func (f fakeRegCourses) Delete(_ context.Context, _ sqlx.ExtContext, k models.StudentSemesterRegistrationCourse) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	key := regKey(k.SemesterRegistrationID, k.StudentID, k.OfferedCourseID)
	row, ok := f.w.regCourses[key]
	if !ok || row.OfferedCourseSectionID != k.OfferedCourseSectionID {
		return false, nil
	}
	delete(f.w.regCourses, key)
	return true, nil
}

func (f fakeRegCourses) ListByStudent(_ context.Context, _ sqlx.ExtContext, semesterRegistrationID, studentID string) ([]models.RegistrationCourseDetail, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.RegistrationCourseDetail
	for _, row := range f.w.regCourses {
		if row.SemesterRegistrationID != semesterRegistrationID || row.StudentID != studentID {
			continue
		}
		oc := f.w.offered[row.OfferedCourseID]
		out = append(out, models.RegistrationCourseDetail{StudentSemesterRegistrationCourse: row, CourseID: oc.CourseID, Credits: oc.Credits})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OfferedCourseID < out[j].OfferedCourseID })
	return out, nil
}

func (f fakeRegCourses) ListOfferedCourseIDs(_ context.Context, semesterRegistrationID, studentID string) ([]string, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var ids []string
	for _, row := range f.w.regCourses {
		if row.SemesterRegistrationID == semesterRegistrationID && row.StudentID == studentID {
			ids = append(ids, row.OfferedCourseID)
		}
	}
	return ids, nil
}

func (f fakeRegCourses) ListRoster(_ context.Context, sectionID string) ([]models.RosterEntry, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	return f.w.roster[sectionID], nil
}

type fakeStudentRegs struct{ w *world }

func (f fakeStudentRegs) Find(_ context.Context, studentID, semesterRegistrationID string) (*models.StudentSemesterRegistration, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	ssr, ok := f.w.studentRegs[regKey(studentID, semesterRegistrationID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &ssr, nil
}

func (f fakeStudentRegs) GetOrCreate(ctx context.Context, studentID, semesterRegistrationID string) (*models.StudentSemesterRegistration, error) {
	f.w.mu.Lock()
	key := regKey(studentID, semesterRegistrationID)
	if _, ok := f.w.studentRegs[key]; !ok {
		f.w.studentRegs[key] = models.StudentSemesterRegistration{ID: uuid.NewString(), StudentID: studentID, SemesterRegistrationID: semesterRegistrationID}
	}
	f.w.mu.Unlock()
	return f.Find(ctx, studentID, semesterRegistrationID)
}

func (f fakeStudentRegs) Confirm(_ context.Context, id string) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for k, ssr := range f.w.studentRegs {
		if ssr.ID == id {
			ssr.IsConfirmed = true
			f.w.studentRegs[k] = ssr
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f fakeStudentRegs) AddCredits(_ context.Context, _ sqlx.ExtContext, studentID, semesterRegistrationID string, credits int) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	key := regKey(studentID, semesterRegistrationID)
	ssr, ok := f.w.studentRegs[key]
	if !ok {
		ssr = models.StudentSemesterRegistration{ID: uuid.NewString(), StudentID: studentID, SemesterRegistrationID: semesterRegistrationID}
	}
	ssr.TotalCreditsTaken += credits
	f.w.studentRegs[key] = ssr
	return nil
}

func (f fakeStudentRegs) SubtractCredits(_ context.Context, _ sqlx.ExtContext, studentID, semesterRegistrationID string, credits int) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	key := regKey(studentID, semesterRegistrationID)
	ssr, ok := f.w.studentRegs[key]
	if !ok || ssr.TotalCreditsTaken < credits {
		return false, nil
	}
	ssr.TotalCreditsTaken -= credits
	f.w.studentRegs[key] = ssr
	return true, nil
}

func (f fakeStudentRegs) ListConfirmed(_ context.Context, semesterRegistrationID string) ([]models.StudentSemesterRegistration, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.StudentSemesterRegistration
	for _, ssr := range f.w.studentRegs {
		if ssr.SemesterRegistrationID == semesterRegistrationID && ssr.IsConfirmed {
			out = append(out, ssr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

type fakeEnrolled struct{ w *world }

func (f fakeEnrolled) EnsureEnrolledCourse(_ context.Context, _ sqlx.ExtContext, studentID, courseID, academicSemesterID string) (string, bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	if f.w.failStudents[studentID] {
		return "", false, errors.New("connection reset")
	}
	key := regKey(studentID, courseID, academicSemesterID)
	if id, ok := f.w.enrolled[key]; ok {
		return id, false, nil
	}
	id := uuid.NewString()
	f.w.enrolled[key] = id
	return id, true, nil
}

func (f fakeEnrolled) EnsureMark(_ context.Context, _ sqlx.ExtContext, mark models.StudentEnrolledCourseMark) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	key := regKey(mark.StudentEnrolledCourseID, string(mark.ExamType))
	if f.w.marks[key] {
		return false, nil
	}
	f.w.marks[key] = true
	return true, nil
}

func (f fakeEnrolled) EnsurePayment(_ context.Context, _ sqlx.ExtContext, payment *models.StudentSemesterPayment) (bool, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	key := regKey(payment.StudentID, payment.AcademicSemesterID)
	if _, ok := f.w.payments[key]; ok {
		return false, nil
	}
	if payment.PaymentStatus == "" {
		payment.PaymentStatus = models.PaymentPending
	}
	f.w.payments[key] = *payment
	return true, nil
}

type fakeSchedules struct{ w *world }

func (f fakeSchedules) ListByRoomAndDay(_ context.Context, roomID string, day models.WeekDay) ([]models.OfferedCourseClassSchedule, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.OfferedCourseClassSchedule
	for _, s := range f.w.schedules {
		if s.RoomID == roomID && s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeSchedules) ListByFacultyAndDay(_ context.Context, facultyID string, day models.WeekDay) ([]models.OfferedCourseClassSchedule, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	var out []models.OfferedCourseClassSchedule
	for _, s := range f.w.schedules {
		if s.FacultyID == facultyID && s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeSchedules) CreateBatch(_ context.Context, _ sqlx.ExtContext, schedules []models.OfferedCourseClassSchedule) error {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	for i := range schedules {
		if schedules[i].ID == "" {
			schedules[i].ID = uuid.NewString()
		}
		f.w.schedules = append(f.w.schedules, schedules[i])
	}
	return nil
}

func (f fakeSchedules) ListDetailsBySections(_ context.Context, sectionIDs []string) ([]models.ClassScheduleDetail, error) {
	f.w.mu.Lock()
	defer f.w.mu.Unlock()
	wanted := toSet(sectionIDs)
	var out []models.ClassScheduleDetail
	for _, s := range f.w.schedules {
		if _, ok := wanted[s.OfferedCourseSectionID]; ok {
			out = append(out, models.ClassScheduleDetail{OfferedCourseClassSchedule: s, RoomNumber: "R-" + s.RoomID})
		}
	}
	return out, nil
}

// seedOngoingWindow stores an ONGOING window, its semester, one student and one
// three-credit offered course with a single section of the given capacity.
func seedOngoingWindow(w *world, capacity int) {
	w.semesters["sem-1"] = models.AcademicSemester{ID: "sem-1", Title: "Autumn", Year: 2025}
	w.windows["reg-1"] = models.SemesterRegistration{ID: "reg-1", AcademicSemesterID: "sem-1", Status: models.SemesterRegistrationOngoing}
	addStudent(w, "S-1", "stu-1")
	w.offered["oc-1"] = models.OfferedCourseWithCredits{
		OfferedCourse: models.OfferedCourse{ID: "oc-1", CourseID: "c-1", SemesterRegistrationID: "reg-1", AcademicDepartmentID: "dept-1"},
		Credits:       3,
	}
	w.catalog["oc-1"] = dto.OfferedCourseCatalogRow{OfferedCourseID: "oc-1", CourseID: "c-1", Title: "Algorithms", Code: "CS201", Credits: 3}
	w.sections["sec-1"] = models.OfferedCourseSection{ID: "sec-1", Title: "A", MaxCapacity: capacity, OfferedCourseID: "oc-1", SemesterRegistrationID: "reg-1"}
}

func addStudent(w *world, authID, id string) {
	w.students[authID] = models.Student{ID: id, StudentID: authID, FirstName: "Student", LastName: authID, AcademicDepartmentID: "dept-1"}
}

func newEnrollmentFixture(w *world) *EnrollmentService {
	return NewEnrollmentService(EnrollmentServiceDeps{
		Students:       fakeStudents{w},
		Registrations:  fakeWindows{w},
		OfferedCourses: fakeOffered{w},
		Sections:       fakeSections{w},
		Enrollments:    fakeRegCourses{w},
		Credits:        fakeStudentRegs{w},
		Tx:             fakeTx{w},
	})
}
