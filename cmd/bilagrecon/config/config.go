// Package config translates CLI flags into component configurations.
package config

import (
	"voucher-reconciliation-service/internal/exports"
	"voucher-reconciliation-service/internal/reporter"
	"voucher-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// Viper keys for overriding the export layout from a config file. The
// defaults match the ledger's standard export; overrides exist for the day
// the report layout shifts a column.
const (
	keyPreambleLines      = "layout.preamble-lines"
	keyHeaderAmountColumn = "layout.header-amount-column"
	keyTypeCodeColumn     = "layout.type-code-column"
	keyPartyColumn        = "layout.party-column"
	keyAgreementColumn    = "layout.agreement-column"
	keyAmountColumn       = "layout.amount-column"
)

// CreateLoggerConfig returns the logger configuration for a CLI run.
func CreateLoggerConfig(verbose bool) *logger.Config {
	if verbose {
		return logger.DebugConfig()
	}
	return logger.DefaultConfig()
}

// CreateExportLayout returns the export layout, with any config-file
// overrides applied on top of the defaults.
func CreateExportLayout() *exports.Layout {
	layout := exports.DefaultLayout()

	if viper.IsSet(keyPreambleLines) {
		layout.PreambleLines = viper.GetInt(keyPreambleLines)
	}
	if viper.IsSet(keyHeaderAmountColumn) {
		layout.HeaderAmountColumn = viper.GetInt(keyHeaderAmountColumn)
		layout.HeaderMinFields = layout.HeaderAmountColumn + 1
	}
	if viper.IsSet(keyTypeCodeColumn) {
		layout.TypeCodeColumn = viper.GetInt(keyTypeCodeColumn)
	}
	if viper.IsSet(keyPartyColumn) {
		layout.PartyColumn = viper.GetInt(keyPartyColumn)
	}
	if viper.IsSet(keyAgreementColumn) {
		layout.AgreementColumn = viper.GetInt(keyAgreementColumn)
	}
	if viper.IsSet(keyAmountColumn) {
		layout.AmountColumn = viper.GetInt(keyAmountColumn)
	}

	minDetail := layout.TypeCodeColumn
	for _, col := range []int{layout.PartyColumn, layout.AgreementColumn, layout.AmountColumn} {
		if col > minDetail {
			minDetail = col
		}
	}
	if layout.DetailMinFields <= minDetail {
		layout.DetailMinFields = minDetail + 1
	}

	return layout
}

// CreateReportConfig returns the report configuration for the given format.
func CreateReportConfig(format string, includePostings bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.Format(format)
	config.IncludePostings = includePostings
	return config
}
