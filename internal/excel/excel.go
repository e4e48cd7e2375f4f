// Package excel reads the voucher input workbook and writes the result
// workbook handed back to the requesting party.
//
// The input sheet is expected to have the columns
// SUM, TEKST, AI, <blank>, Bilagsart, Bilagsnummer, FP, Dato, Beløb
// with a single header row. Rows whose bilagsart is "ZF" or blank are not
// reconciled and are skipped on ingestion.
package excel

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"voucher-reconciliation-service/internal/models"
	"voucher-reconciliation-service/internal/reconciler"
	"voucher-reconciliation-service/pkg/errors"
	"voucher-reconciliation-service/pkg/logger"
)

// Input sheet column indices (0-based).
const (
	colSum          = 0
	colText         = 1
	colBilagsart    = 4
	colBilagsnummer = 5
	colDate         = 7
)

// excludedBilagsart marks vouchers that are never reconciled.
const excludedBilagsart = "ZF"

// dateFormats are the date renderings accepted in the Dato column.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"01/02/2006",
	"01-02-06",
}

// ReadBilagList parses the first sheet of a voucher workbook into an ordered
// list of Bilag records.
func ReadBilagList(r io.Reader) ([]*models.Bilag, error) {
	log := logger.GetGlobalLogger().WithComponent("excel_reader")

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFileRead,
			"failed to open voucher workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New(errors.CategoryParse, errors.CodeInvalidFormat,
			"voucher workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryParse, errors.CodeInvalidFormat,
			"failed to read voucher sheet rows")
	}

	var bilagList []*models.Bilag
	skipped := 0

	// Row 0 is the header row.
	for i := 1; i < len(rows); i++ {
		row := rows[i]

		bilagsart := cellValue(row, colBilagsart)
		if bilagsart == "" || bilagsart == excludedBilagsart {
			skipped++
			continue
		}

		bilag, err := parseBilagRow(row, bilagsart)
		if err != nil {
			if reconcilerErr, ok := errors.AsReconcilerError(err); ok {
				return nil, reconcilerErr.WithContext("row", i+1)
			}
			return nil, err
		}

		bilagList = append(bilagList, bilag)
	}

	log.WithFields(logger.Fields{
		"sheet":    sheet,
		"vouchers": len(bilagList),
		"skipped":  skipped,
	}).Debug("Read voucher workbook")

	return bilagList, nil
}

func parseBilagRow(row []string, bilagsart string) (*models.Bilag, error) {
	sumText := cellValue(row, colSum)
	sum, err := decimal.NewFromString(sumText)
	if err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidData, "SUM", sumText, err)
	}

	dateText := cellValue(row, colDate)
	date, err := parseDate(dateText)
	if err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidData, "Dato", dateText, err)
	}

	bilag := models.NewBilag(sum, cellValue(row, colText), bilagsart, cellValue(row, colBilagsnummer), date)
	if err := bilag.Validate(); err != nil {
		return nil, errors.ValidationError(errors.CodeInvalidData, "bilag", bilag.Bilagsnummer, err)
	}

	return bilag, nil
}

func cellValue(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date cell is empty")
	}

	var lastErr error
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s': %w", s, lastErr)
}

// resultHeader is the column layout of the output workbook.
var resultHeader = []interface{}{"SUM", "Tekst", "Aftale", "", "Bilagsart", "Bilagsnummer", "FP", "Dato", "Beløb"}

// WriteResults writes one row per posting of a fully reconciled batch.
// It must only ever be called with a batch in which every voucher passed;
// ReconcileBatch guarantees that by aborting on the first failure.
func WriteResults(batch *reconciler.BatchResult, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &resultHeader); err != nil {
		return errors.InternalError("result_workbook_header", err)
	}

	rowIndex := 1
	for _, result := range batch.Results {
		for _, posting := range result.Postings {
			rowIndex++
			row := []interface{}{
				result.Bilag.Sum.InexactFloat64(),
				result.Bilag.Text,
				posting.Agreement,
				"",
				result.Bilag.Bilagsart,
				result.Bilag.Bilagsnummer,
				posting.Party,
				result.Bilag.Date.Format("2006-01-02"),
				posting.Amount.InexactFloat64(),
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIndex)
			if err != nil {
				return errors.InternalError("result_workbook_row", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return errors.InternalError("result_workbook_row", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, errors.CategoryFile, errors.CodeFileRead,
			"failed to write result workbook")
	}

	return nil
}
