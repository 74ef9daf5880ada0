package feedback

import (
	"errors"

	feedbackerrors "jovenva-attendance/internal/feedback/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 23503: the submitting user has no row in users.
const foreignKeyViolation = "23503"

func mapRepositoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return feedbackerrors.ErrInvalidUserID
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return feedbackerrors.ErrInvalidUserID
	}
	return err
}
