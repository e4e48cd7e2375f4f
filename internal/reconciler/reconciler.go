// Package reconciler verifies vouchers against the postings extracted from
// ledger exports.
//
// For each voucher the service obtains one export stream from an externally
// supplied provider, scans it for the voucher's postings and checks that
// their total equals the voucher amount. Vouchers are processed strictly in
// order: the export-producing interaction behind the provider is a single
// exclusive session, so there is nothing to parallelize. Any failure aborts
// the remaining batch; a partial result must never reach the output report.
package reconciler

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"voucher-reconciliation-service/internal/exports"
	"voucher-reconciliation-service/internal/models"
	"voucher-reconciliation-service/pkg/errors"
	"voucher-reconciliation-service/pkg/logger"
)

// ExportProvider obtains the export text for one voucher. Implementations
// own whatever external interaction produces the export (interactive ledger
// session, pre-exported files on disk) and any on-disk artifacts behind the
// returned reader; the service only closes the reader handle it is given.
type ExportProvider interface {
	Fetch(ctx context.Context, bilag *models.Bilag) (io.ReadCloser, error)
}

// ProviderFunc adapts a function to the ExportProvider interface.
type ProviderFunc func(ctx context.Context, bilag *models.Bilag) (io.ReadCloser, error)

// Fetch implements ExportProvider.
func (f ProviderFunc) Fetch(ctx context.Context, bilag *models.Bilag) (io.ReadCloser, error) {
	return f(ctx, bilag)
}

// BilagResult pairs a reconciled voucher with its extracted postings.
type BilagResult struct {
	Bilag    *models.Bilag    `json:"bilag"`
	Postings []models.Posting `json:"postings"`
	Total    decimal.Decimal  `json:"total"`
}

// BatchResult holds the outcome of a fully reconciled batch. It exists only
// when every voucher in the batch passed: a mismatch anywhere aborts the run
// before a result is produced.
type BatchResult struct {
	Results  []*BilagResult         `json:"results"`
	Code     models.TransactionCode `json:"transaction_code"`
	Postings int                    `json:"postings"`
	Duration time.Duration          `json:"duration"`
}

// Service reconciles batches of vouchers against ledger exports.
type Service struct {
	provider ExportProvider
	scanner  *exports.Scanner
	code     models.TransactionCode
	logger   logger.Logger
}

// NewService creates a reconciliation service. The provider supplies one
// export stream per voucher; layout may be nil to use the default export
// layout; code selects which detail rows count towards a voucher's total.
func NewService(provider ExportProvider, layout *exports.Layout, code models.TransactionCode) (*Service, error) {
	if provider == nil {
		return nil, errors.ValidationError(
			errors.CodeMissingField,
			"export_provider",
			nil,
			nil,
		).WithSuggestion("supply an ExportProvider that produces export text per voucher")
	}

	scanner, err := exports.NewScanner(layout)
	if err != nil {
		return nil, err
	}

	log := logger.GetGlobalLogger().WithComponent("reconciler")
	if !code.IsKnown() {
		// Open passthrough: unknown codes are searched as-is.
		log.WithField("transaction_code", code.String()).Warn("Transaction code is not one of the known ledger codes")
	}

	return &Service{
		provider: provider,
		scanner:  scanner,
		code:     code,
		logger:   log,
	}, nil
}

// Reconcile verifies a single voucher: fetch its export, extract the
// postings and compare their rounded total against the voucher amount.
func (s *Service) Reconcile(ctx context.Context, bilag *models.Bilag) (*BilagResult, error) {
	log := s.logger.WithFields(logger.Fields{
		"bilagsnummer": bilag.Bilagsnummer,
		"sum":          bilag.Sum.StringFixed(2),
	})
	log.Debug("Reconciling bilag")

	export, err := s.provider.Fetch(ctx, bilag)
	if err != nil {
		return nil, errors.WrapIfNeeded(err, errors.CategoryFile, errors.CodeFileRead,
			"failed to obtain export text for voucher "+bilag.Bilagsnummer)
	}
	defer export.Close()

	postings, err := s.scanner.FindPostings(export, bilag.Sum, s.code)
	if err != nil {
		return nil, err
	}

	total := models.SumPostings(postings)
	if !total.Equal(bilag.Sum.Round(2)) {
		log.WithField("total", total.StringFixed(2)).Error("Posting total does not match bilag sum")
		return nil, errors.ReconciliationMismatchError(
			bilag.Bilagsnummer,
			bilag.Sum.StringFixed(2),
			total.StringFixed(2),
		)
	}

	log.WithField("postings", len(postings)).Debug("Bilag reconciled")

	return &BilagResult{
		Bilag:    bilag,
		Postings: postings,
		Total:    total,
	}, nil
}

// ReconcileBatch processes the vouchers sequentially, in input order. The
// first failure of any kind aborts the batch and no results are returned.
func (s *Service) ReconcileBatch(ctx context.Context, bilagList []*models.Bilag) (*BatchResult, error) {
	start := time.Now()

	s.logger.WithFields(logger.Fields{
		"bilag_count":      len(bilagList),
		"transaction_code": s.code.String(),
	}).Info("Starting reconciliation batch")

	results := make([]*BilagResult, 0, len(bilagList))
	postingCount := 0

	for _, bilag := range bilagList {
		if err := ctx.Err(); err != nil {
			return nil, errors.InternalError("reconciliation_batch", err)
		}

		result, err := s.Reconcile(ctx, bilag)
		if err != nil {
			s.logger.WithError(err).WithField("bilagsnummer", bilag.Bilagsnummer).
				Error("Aborting batch")
			return nil, err
		}

		results = append(results, result)
		postingCount += len(result.Postings)
	}

	elapsed := time.Since(start)
	s.logger.WithFields(logger.Fields{
		"bilag_count": len(results),
		"postings":    postingCount,
		"elapsed":     elapsed,
	}).Info("Reconciliation batch completed")

	return &BatchResult{
		Results:  results,
		Code:     s.code,
		Postings: postingCount,
		Duration: elapsed,
	}, nil
}
