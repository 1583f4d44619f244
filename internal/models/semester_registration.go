package models

import "time"

// SemesterRegistrationStatus is the lifecycle state of a registration window.
type SemesterRegistrationStatus string

const (
	SemesterRegistrationUpcoming SemesterRegistrationStatus = "UPCOMING"
	SemesterRegistrationOngoing  SemesterRegistrationStatus = "ONGOING"
	SemesterRegistrationEnded    SemesterRegistrationStatus = "ENDED"
)

// Valid reports whether s is a known status.
func (s SemesterRegistrationStatus) Valid() bool {
	switch s {
	case SemesterRegistrationUpcoming, SemesterRegistrationOngoing, SemesterRegistrationEnded:
		return true
	}
	return false
}

// Next returns the only status s may advance to. ENDED has no successor.
func (s SemesterRegistrationStatus) Next() (SemesterRegistrationStatus, bool) {
	switch s {
	case SemesterRegistrationUpcoming:
		return SemesterRegistrationOngoing, true
	case SemesterRegistrationOngoing:
		return SemesterRegistrationEnded, true
	}
	return "", false
}

// Active reports whether the window blocks creation of another one.
func (s SemesterRegistrationStatus) Active() bool {
	return s == SemesterRegistrationUpcoming || s == SemesterRegistrationOngoing
}

// SemesterRegistration is a time-bounded registration window tied to one academic semester.
type SemesterRegistration struct {
	ID                 string                     `db:"id" json:"id"`
	AcademicSemesterID string                     `db:"academic_semester_id" json:"academicSemesterId"`
	Status             SemesterRegistrationStatus `db:"status" json:"status"`
	StartDate          time.Time                  `db:"start_date" json:"startDate"`
	EndDate            time.Time                  `db:"end_date" json:"endDate"`
	MinCredit          int                        `db:"min_credit" json:"minCredit"`
	MaxCredit          int                        `db:"max_credit" json:"maxCredit"`
	CreatedAt          time.Time                  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time                  `db:"updated_at" json:"updatedAt"`
}

// HasCreditBounds reports whether both credit limits are configured.
func (r *SemesterRegistration) HasCreditBounds() bool {
	return r.MinCredit > 0 && r.MaxCredit > 0
}

// SemesterRegistrationFilter is the allow-listed query surface for listing windows.
type SemesterRegistrationFilter struct {
	AcademicSemesterID string
	Status             SemesterRegistrationStatus
	Page               int
	PageSize           int
	SortBy             string
	SortOrder          string
}

// AcademicSemester is a directory entry; exactly one is current at a time.
type AcademicSemester struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Year      int       `db:"year" json:"year"`
	Code      string    `db:"code" json:"code"`
	IsCurrent bool      `db:"is_current" json:"isCurrent"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
