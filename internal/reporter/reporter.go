// Package reporter renders a human- or machine-readable summary of a
// reconciled batch. The authoritative output is the result workbook written
// by the excel package; the report is the operator-facing companion.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"voucher-reconciliation-service/internal/reconciler"
	"voucher-reconciliation-service/pkg/errors"
	"voucher-reconciliation-service/pkg/logger"
)

// Format is a supported report output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ReportConfig controls report generation.
type ReportConfig struct {
	Format          Format `json:"format"`
	IncludePostings bool   `json:"include_postings"`
}

// DefaultReportConfig returns a console report without per-posting detail.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:          FormatConsole,
		IncludePostings: false,
	}
}

// Validate checks the report configuration.
func (c *ReportConfig) Validate() error {
	switch c.Format {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return errors.ConfigurationError("report_format", string(c.Format), nil).
			WithSuggestion("valid formats: console, json")
	}
}

// Generator renders batch results in the configured format.
type Generator struct {
	config *ReportConfig
	logger logger.Logger
}

// NewGenerator creates a report generator. A nil config selects the default.
func NewGenerator(config *ReportConfig) (*Generator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("reporter"),
	}, nil
}

// Generate writes the batch summary to w.
func (g *Generator) Generate(batch *reconciler.BatchResult, w io.Writer) error {
	if batch == nil {
		return errors.ValidationError(errors.CodeMissingField, "batch_result", nil, nil)
	}

	switch g.config.Format {
	case FormatJSON:
		return g.generateJSON(batch, w)
	default:
		return g.generateConsole(batch, w)
	}
}

func (g *Generator) generateConsole(batch *reconciler.BatchResult, w io.Writer) error {
	fmt.Fprintf(w, "Reconciliation Summary\n")
	fmt.Fprintf(w, "======================\n")
	fmt.Fprintf(w, "Transaction code: %s\n", batch.Code)
	fmt.Fprintf(w, "Vouchers reconciled: %d\n", len(batch.Results))
	fmt.Fprintf(w, "Postings extracted: %d\n", batch.Postings)
	fmt.Fprintf(w, "Processing time: %v\n", batch.Duration)
	fmt.Fprintf(w, "\n")

	for _, result := range batch.Results {
		fmt.Fprintf(w, "%-12s  %3d postings  total %12s\n",
			result.Bilag.Bilagsnummer, len(result.Postings), result.Total.StringFixed(2))

		if g.config.IncludePostings {
			for _, posting := range result.Postings {
				fmt.Fprintf(w, "    %-12s %-14s %12s\n",
					posting.Party, posting.Agreement, posting.Amount.StringFixed(2))
			}
		}
	}

	return nil
}

func (g *Generator) generateJSON(batch *reconciler.BatchResult, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(batch); err != nil {
		return errors.InternalError("json_report", err)
	}

	return nil
}
