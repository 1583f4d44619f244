package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-registration-api/internal/models"
)

var windowColumns = []string{"id", "academic_semester_id", "status", "start_date", "end_date", "min_credit", "max_credit", "created_at", "updated_at"}

func TestFindByStatusExpandsStatuses(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSemesterRegistrationRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE status IN ($1, $2) ORDER BY created_at DESC LIMIT 1")).
		WithArgs("ONGOING", "UPCOMING").
		WillReturnRows(sqlmock.NewRows(windowColumns).AddRow("reg-1", "sem-1", "ONGOING", now, now.Add(time.Hour), 12, 18, now, now))

	reg, err := repo.FindByStatus(context.Background(), models.SemesterRegistrationOngoing, models.SemesterRegistrationUpcoming)
	require.NoError(t, err)
	assert.Equal(t, models.SemesterRegistrationOngoing, reg.Status)
	assert.Equal(t, 18, reg.MaxCredit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByStatusWithoutStatuses(t *testing.T) {
	db, _ := newRepoMock(t)
	repo := NewSemesterRegistrationRepository(db)

	_, err := repo.FindByStatus(context.Background())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestExistsActive(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSemesterRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("status IN ('UPCOMING', 'ONGOING')")).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	active, err := repo.ExistsActive(context.Background())
	require.NoError(t, err)
	assert.False(t, active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesFiltersAndSafeSort(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSemesterRegistrationRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("AND academic_semester_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 20 OFFSET 20")).
		WithArgs("sem-1", "ENDED").
		WillReturnRows(sqlmock.NewRows(windowColumns).AddRow("reg-1", "sem-1", "ENDED", now, now, 0, 0, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM semester_registrations")).
		WithArgs("sem-1", "ENDED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	regs, total, err := repo.List(context.Background(), models.SemesterRegistrationFilter{
		AcademicSemesterID: "sem-1",
		Status:             models.SemesterRegistrationEnded,
		Page:               2,
		SortBy:             "id; DROP TABLE semester_registrations",
		SortOrder:          "sideways",
	})
	require.NoError(t, err)
	assert.Len(t, regs, 1)
	assert.Equal(t, 21, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCurrentClearsThenSets(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAcademicSemesterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET is_current = FALSE")).
		WithArgs(sqlmock.AnyArg(), "sem-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET is_current = TRUE")).
		WithArgs("sem-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetCurrent(context.Background(), nil, "sem-2"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCurrentFailsForUnknownSemester(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAcademicSemesterRepository(db)

	mock.ExpectExec("SET is_current = FALSE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SET is_current = TRUE").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Error(t, repo.SetCurrent(context.Background(), nil, "missing"))
}
