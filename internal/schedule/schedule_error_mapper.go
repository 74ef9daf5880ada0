package schedule

import (
	"errors"

	scheduleerrors "jovenva-attendance/internal/schedule/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 23503: the assignee is not a known user.
const foreignKeyViolation = "23503"

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scheduleerrors.ErrTaskNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return scheduleerrors.ErrInvalidUserID
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return scheduleerrors.ErrInvalidUserID
	}
	return err
}
