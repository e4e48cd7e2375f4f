// Package exports locates and extracts posting rows from ledger export files.
//
// An export file is a tab-delimited text report: a fixed banner preamble
// followed by blocks. Each block starts with a header line carrying the
// block's total amount and ends at a blank line. The scanner walks the stream
// block by block looking for the header whose amount matches the target,
// then hands the shared cursor to the detail row filter. Non-matching blocks
// are skipped wholesale to the next blank line so their rows can never leak
// into the result.
package exports

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"voucher-reconciliation-service/internal/currency"
	"voucher-reconciliation-service/internal/models"
	"voucher-reconciliation-service/pkg/errors"
	"voucher-reconciliation-service/pkg/logger"
)

// Scanner extracts postings for a target amount from export streams.
type Scanner struct {
	layout *Layout
	logger logger.Logger
}

// NewScanner creates a scanner for the given export layout. A nil layout
// selects the default layout.
func NewScanner(layout *Layout) (*Scanner, error) {
	if layout == nil {
		layout = DefaultLayout()
	}

	if err := layout.Validate(); err != nil {
		return nil, err
	}

	return &Scanner{
		layout: layout,
		logger: logger.GetGlobalLogger().WithComponent("export_scanner"),
	}, nil
}

// lineCursor is the shared read position handed between the block scan and
// the detail row filter. Both phases advance the same cursor, which is what
// makes skip-to-blank-line and retry-after-empty-match well defined.
type lineCursor struct {
	scanner *bufio.Scanner
}

func newLineCursor(r io.Reader) *lineCursor {
	return &lineCursor{scanner: bufio.NewScanner(r)}
}

// next returns the next line without its terminator, and false at stream end.
func (c *lineCursor) next() (string, bool) {
	if c.scanner.Scan() {
		return c.scanner.Text(), true
	}
	return "", false
}

func (c *lineCursor) err() error {
	return c.scanner.Err()
}

// FindPostings scans one export stream for the block whose header amount
// equals target and returns the detail rows carrying the given transaction
// code. Amounts can repeat across blocks and a matching block may contain no
// relevant rows, so an empty match is not conclusive: scanning continues
// until a block yields rows or the stream ends.
//
// A postings-not-found error is returned when the stream is exhausted without
// a conclusive match. A malformed amount in a relevant detail row is fatal.
func (s *Scanner) FindPostings(r io.Reader, target decimal.Decimal, code models.TransactionCode) ([]models.Posting, error) {
	cur := newLineCursor(r)

	for i := 0; i < s.layout.PreambleLines; i++ {
		if _, ok := cur.next(); !ok {
			break
		}
	}

	headerAmount := currency.EncodeHeader(target)
	blocksSkipped := 0
	emptyMatches := 0

	for {
		line, ok := cur.next()
		if !ok {
			break
		}

		fields := strings.Split(line, "\t")
		if len(fields) < s.layout.HeaderMinFields ||
			strings.TrimSpace(fields[s.layout.HeaderAmountColumn]) != headerAmount {
			s.skipBlock(cur)
			blocksSkipped++
			continue
		}

		postings, err := s.extractDetails(cur, code)
		if err != nil {
			return nil, err
		}

		if len(postings) > 0 {
			s.logger.WithFields(logger.Fields{
				"target_amount":  headerAmount,
				"postings":       len(postings),
				"blocks_skipped": blocksSkipped,
				"empty_matches":  emptyMatches,
			}).Debug("Found matching export block")
			return postings, nil
		}

		// A run of postings can legitimately be empty after filtering;
		// the same amount may head a later block.
		emptyMatches++
	}

	if err := cur.err(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFileRead,
			"failed reading export stream")
	}

	s.logger.WithFields(logger.Fields{
		"target_amount":  headerAmount,
		"blocks_skipped": blocksSkipped,
		"empty_matches":  emptyMatches,
	}).Debug("Export stream exhausted without a conclusive match")

	return nil, errors.PostingsNotFoundError(target.StringFixed(2), code.String())
}

// extractDetails reads detail rows until the block's terminating blank line
// or stream end. Rows that are short, carry a different transaction code or
// lack a party/agreement reference are dropped silently; they belong to
// postings unrelated to the requested voucher class.
func (s *Scanner) extractDetails(cur *lineCursor, code models.TransactionCode) ([]models.Posting, error) {
	var postings []models.Posting

	for {
		line, ok := cur.next()
		if !ok || line == "" {
			break
		}

		fields := strings.Split(line, "\t")
		if len(fields) < s.layout.DetailMinFields {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		if fields[s.layout.TypeCodeColumn] != code.String() {
			continue
		}

		amount, err := currency.Decode(fields[s.layout.AmountColumn])
		if err != nil {
			return nil, err
		}

		party := fields[s.layout.PartyColumn]
		agreement := fields[s.layout.AgreementColumn]
		if party == "" || agreement == "" {
			continue
		}

		postings = append(postings, models.NewPosting(party, agreement, amount))
	}

	return postings, nil
}

// skipBlock discards the rest of a non-matching block, up to and including
// its terminating blank line.
func (s *Scanner) skipBlock(cur *lineCursor) {
	for {
		line, ok := cur.next()
		if !ok || line == "" {
			return
		}
	}
}
