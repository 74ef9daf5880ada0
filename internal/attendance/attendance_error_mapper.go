package attendance

import (
	"errors"
	"strings"

	attendanceerrors "jovenva-attendance/internal/attendance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueUserDateConstraint = "uq_attendance_user_date"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return attendanceerrors.ErrAttendanceNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == uniqueUserDateConstraint {
			return attendanceerrors.ErrAlreadyCheckedIn
		}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return attendanceerrors.ErrAlreadyCheckedIn
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, uniqueUserDateConstraint) {
		return attendanceerrors.ErrAlreadyCheckedIn
	}

	return err
}
