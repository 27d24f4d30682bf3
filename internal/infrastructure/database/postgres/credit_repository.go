package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-application/internal/domain/credit"
	"credit-application/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

const creditColumns = `id, credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at, updated_at`

type CreditRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ credit.Repository = (*CreditRepository)(nil)

func NewCreditRepository(db DBPool, logger *slog.Logger) *CreditRepository {
	if db == nil {
		panic("DBPool cannot be nil for CreditRepository")
	}
	return &CreditRepository{db: db, logger: logger.With("component", "CreditRepository")}
}

func (r *CreditRepository) Create(ctx context.Context, cr *credit.Credit) (*credit.Credit, error) {
	if cr == nil {
		return nil, fmt.Errorf("%w: credit cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new credit", slog.Int64("customerID", cr.CustomerID))

	query := `
        INSERT INTO credits (credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING ` + creditColumns

	created, err := scanCredit(r.db.QueryRow(ctx, query,
		cr.CreditCode,
		cr.CreditValue,
		cr.DayFirstInstallment,
		cr.NumberOfInstallments,
		cr.Status,
		cr.CustomerID,
	))
	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			r.logger.WarnContext(ctx, "Failed to insert credit, customer foreign key does not resolve", slog.Int64("customerID", cr.CustomerID))
			return nil, translatedErr
		}
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert credit due to unique constraint violation", slog.Any("error", err))
			return nil, translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert credit", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to insert credit: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Credit inserted successfully", slog.Int64("creditID", created.ID))
	return created, nil
}

func (r *CreditRepository) FindByCode(ctx context.Context, creditCode uuid.UUID) (*credit.Credit, error) {
	r.logger.InfoContext(ctx, "Attempting to find credit by code")

	query := `SELECT ` + creditColumns + ` FROM credits WHERE credit_code = $1`

	cr, err := scanCredit(r.db.QueryRow(ctx, query, creditCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Credit not found")
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan credit by code", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get credit by code: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Credit found successfully")
	return cr, nil
}

func (r *CreditRepository) FindAllByCustomer(ctx context.Context, customerID int64) ([]*credit.Credit, error) {
	r.logger.InfoContext(ctx, "Attempting to find credits by customer", slog.Int64("customerID", customerID))

	query := `SELECT ` + creditColumns + ` FROM credits WHERE customer_id = $1 ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query credits by customer", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query credits: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	credits, err := collectCredits(rows)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to collect credit rows", slog.Any("error", err))
		return nil, err
	}

	r.logger.InfoContext(ctx, "Finished finding credits by customer", slog.Int("count", len(credits)))
	return credits, nil
}

func (r *CreditRepository) FindStalePending(ctx context.Context, asOf time.Time) ([]*credit.Credit, error) {
	r.logger.InfoContext(ctx, "Attempting to find stale pending credits")

	query := `SELECT ` + creditColumns + ` FROM credits WHERE status = $1 AND day_first_installment <= $2 ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, credit.StatusPending, asOf)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query stale pending credits", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query stale pending credits: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	credits, err := collectCredits(rows)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to collect stale pending credit rows", slog.Any("error", err))
		return nil, err
	}

	r.logger.InfoContext(ctx, "Finished finding stale pending credits", slog.Int("count", len(credits)))
	return credits, nil
}

func (r *CreditRepository) UpdateStatus(ctx context.Context, creditID int64, status credit.CreditStatus) error {
	r.logger.InfoContext(ctx, "Attempting to update credit status", slog.Int64("creditID", creditID), slog.String("status", string(status)))

	// The status predicate makes the transition atomic: a credit decided
	// by a concurrent writer between the caller's read and this update
	// matches zero rows instead of being overwritten.
	query := `UPDATE credits SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	cmdTag, err := r.db.Exec(ctx, query, status, creditID, credit.StatusPending)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute update credit status", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update credit status: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var current credit.CreditStatus
		err := r.db.QueryRow(ctx, `SELECT status FROM credits WHERE id = $1`, creditID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				r.logger.WarnContext(ctx, "Update status affected zero rows, credit not found")
				return apperrors.ErrNotFound
			}
			r.logger.ErrorContext(ctx, "Failed to re-read credit status after zero-row update", slog.Any("error", err))
			return fmt.Errorf("%w: failed to re-read credit status: %w", apperrors.ErrDatabase, err)
		}
		r.logger.WarnContext(ctx, "Update status lost to a concurrent decision", slog.String("currentStatus", string(current)))
		return fmt.Errorf("%w: credit is already %s", apperrors.ErrConflict, current)
	}

	r.logger.InfoContext(ctx, "Credit status updated successfully")
	return nil
}

func scanCredit(row pgx.Row) (*credit.Credit, error) {
	var cr credit.Credit
	err := row.Scan(
		&cr.ID,
		&cr.CreditCode,
		&cr.CreditValue,
		&cr.DayFirstInstallment,
		&cr.NumberOfInstallments,
		&cr.Status,
		&cr.CustomerID,
		&cr.CreatedAt,
		&cr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func collectCredits(rows pgx.Rows) ([]*credit.Credit, error) {
	credits := make([]*credit.Credit, 0)
	for rows.Next() {
		cr, err := scanCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan credit row: %w", apperrors.ErrDatabase, err)
		}
		credits = append(credits, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating credit rows: %w", apperrors.ErrDatabase, err)
	}
	return credits, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		case "23503":
			// Foreign key violations mean the referenced row is gone.
			contextLogger.Warn("Database foreign key violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrNotFound, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return apperrors.WrapDatabaseError(err, "unexpected database error")
}
