package cohort

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/dtroode/cohort-migrator/internal/logger"
	"github.com/dtroode/cohort-migrator/internal/model"
)

const columnCount = 4

// expectedHeader holds the fixed column labels. The billing reference column
// label varies between exports and is not checked.
var expectedHeader = [columnCount]string{"customer name", "customer email", "", "signup date"}

// ErrInvalidHeader is returned when the source header does not match the fixed columns.
var ErrInvalidHeader = errors.New("invalid cohort header")

// Loader parses cohort sources.
type Loader struct {
	delimiter rune
	logger    *logger.Logger
}

// NewLoader creates a Loader for sources using the given field delimiter.
func NewLoader(delimiter rune, logger *logger.Logger) *Loader {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Loader{delimiter: delimiter, logger: logger}
}

// Load reads every row of r, validates and normalizes it, and drops later rows
// whose normalized email was already seen. Invalid rows are skipped and reported
// in the cohort's RowErrors; only an unreadable source or header fails the load.
func (l *Loader) Load(ctx context.Context, tag, source string, r io.Reader) (*Cohort, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty source", ErrInvalidHeader)
		}
		return nil, fmt.Errorf("failed to read cohort header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var (
		records   []model.CohortRecord
		rowErrors []model.RowError
		dupes     int
		seen      = make(map[string]struct{})
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrors = append(rowErrors, model.RowError{Line: parseErr.Line, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("failed to read cohort row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		line, _ := reader.FieldPos(0)

		record, rowErr := parseRow(line, row)
		if rowErr != nil {
			rowErrors = append(rowErrors, *rowErr)
			continue
		}

		if _, dup := seen[record.NormalizedEmail]; dup {
			dupes++
			l.logger.Debug("Cohort loader: dropping duplicate record",
				"line", line,
				"email", record.NormalizedEmail)
			continue
		}
		seen[record.NormalizedEmail] = struct{}{}
		records = append(records, record)
	}

	c := New(tag, source, records)
	c.DuplicatesRemoved = dupes
	c.RowErrors = rowErrors

	l.logger.Info("Cohort loader: cohort loaded",
		"cohort", tag,
		"source", source,
		"records", len(records),
		"duplicates_removed", dupes,
		"row_errors", len(rowErrors))

	return c, nil
}

func validateHeader(header []string) error {
	if len(header) != columnCount {
		return fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidHeader, columnCount, len(header))
	}
	for i, want := range expectedHeader {
		if want == "" {
			continue
		}
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
		if got != want {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrInvalidHeader, i+1, header[i], want)
		}
	}
	return nil
}

func parseRow(line int, row []string) (model.CohortRecord, *model.RowError) {
	if len(row) != columnCount {
		return model.CohortRecord{}, &model.RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", columnCount, len(row))}
	}

	name := strings.TrimSpace(row[0])
	email := strings.TrimSpace(row[1])
	ref := strings.TrimSpace(row[2])
	date := strings.TrimSpace(row[3])

	if name == "" {
		return model.CohortRecord{}, &model.RowError{Line: line, Reason: "customer name is empty"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.CohortRecord{}, &model.RowError{Line: line, Reason: fmt.Sprintf("invalid email %q", email)}
	}
	if ref == "" {
		return model.CohortRecord{}, &model.RowError{Line: line, Reason: "billing reference id is empty"}
	}
	signup, err := dateparse.ParseIn(date, time.UTC)
	if err != nil {
		return model.CohortRecord{}, &model.RowError{Line: line, Reason: fmt.Sprintf("invalid signup date %q", date)}
	}

	return model.CohortRecord{
		Line:               line,
		DisplayName:        name,
		Email:              email,
		BillingReferenceID: ref,
		SignupDate:         signup,
		NormalizedEmail:    NormalizeEmail(email),
		NormalizedName:     NormalizeName(name),
	}, nil
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
