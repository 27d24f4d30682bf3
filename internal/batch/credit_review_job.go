package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"credit-application/internal/domain/credit"
	"credit-application/internal/pkg/apperrors"
)

// CreditReviewJob rejects credit applications that are still PENDING when
// their first installment date has already passed. Nobody can approve a
// credit whose schedule can no longer be honored.
type CreditReviewJob struct {
	creditRepo    credit.Repository
	creditService credit.CreditService
	logger        *slog.Logger
}

func NewCreditReviewJob(creditRepo credit.Repository, creditSvc credit.CreditService, logger *slog.Logger) *CreditReviewJob {
	if creditRepo == nil || creditSvc == nil || logger == nil {
		panic("CreditReviewJob dependencies cannot be nil")
	}
	return &CreditReviewJob{
		creditRepo:    creditRepo,
		creditService: creditSvc,
		logger:        logger.With("job", "CreditReview"),
	}
}

func (j *CreditReviewJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting nightly credit review job.")

	stale, err := j.creditRepo.FindStalePending(ctx, startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to find stale pending credits, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to find stale pending credits: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched stale pending credits.", slog.Int("count", len(stale)))

	if len(stale) == 0 {
		j.logger.InfoContext(ctx, "No stale pending credits to process.")
		j.logger.InfoContext(ctx, "Credit review job finished.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var rejectedCount, skippedCount, errorCount int32

	for _, cr := range stale {
		wg.Add(1)
		go func(cr *credit.Credit) {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("creditCode", cr.CreditCode.String()))

			logCtx.DebugContext(ctx, "Rejecting stale pending credit.")
			if rejectErr := j.creditService.Reject(ctx, cr.CreditCode); rejectErr != nil {
				switch {
				case errors.Is(rejectErr, apperrors.ErrConflict):
					// Decided by an analyst between the query and now.
					logCtx.InfoContext(ctx, "Credit was decided concurrently, skipping.")
					atomic.AddInt32(&skippedCount, 1)
				case errors.Is(rejectErr, apperrors.ErrNotFound):
					logCtx.WarnContext(ctx, "Credit disappeared during review.", slog.Any("error", rejectErr))
					atomic.AddInt32(&skippedCount, 1)
				default:
					logCtx.ErrorContext(ctx, "Failed to reject stale credit", slog.Any("error", rejectErr))
					atomic.AddInt32(&errorCount, 1)
				}
				return
			}

			logCtx.InfoContext(ctx, "Stale credit rejected.")
			atomic.AddInt32(&rejectedCount, 1)
		}(cr)
	}

	wg.Wait()

	j.logger.InfoContext(ctx, "Credit review job finished.",
		slog.Int("rejected", int(rejectedCount)),
		slog.Int("skipped", int(skippedCount)),
		slog.Int("errors", int(errorCount)),
		slog.Duration("duration", time.Since(startTime)))

	if errorCount > 0 {
		return fmt.Errorf("credit review job completed with %d errors", errorCount)
	}
	return nil
}
