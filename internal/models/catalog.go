package models

// Student is the directory view of a student.
type Student struct {
	ID                   string `db:"id" json:"id"`
	StudentID            string `db:"student_id" json:"studentId"`
	FirstName            string `db:"first_name" json:"firstName"`
	LastName             string `db:"last_name" json:"lastName"`
	Email                string `db:"email" json:"email"`
	AcademicDepartmentID string `db:"academic_department_id" json:"academicDepartmentId"`
}

// Course is a catalog entry.
type Course struct {
	ID      string `db:"id" json:"id"`
	Title   string `db:"title" json:"title"`
	Code    string `db:"code" json:"code"`
	Credits int    `db:"credits" json:"credits"`
}

// CoursePrerequisite is a directed edge: CourseID requires PrerequisiteID.
type CoursePrerequisite struct {
	CourseID       string `db:"course_id" json:"courseId"`
	PrerequisiteID string `db:"prerequisite_id" json:"prerequisiteId"`
}
