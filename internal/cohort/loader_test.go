package cohort

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cohort-migrator/internal/testutil"
)

const header = "Customer Name,Customer Email,Stripe Customer ID,Signup Date\n"

func load(t *testing.T, body string) *Cohort {
	t.Helper()
	l := NewLoader(',', testutil.MakeNoopLogger())
	c, err := l.Load(context.Background(), "spring-2025", "test.csv", strings.NewReader(header+body))
	require.NoError(t, err)
	return c
}

func TestLoader_Load_SingleRecord(t *testing.T) {
	c := load(t, "Jane Doe,jane@x.com,cus_1,2025-01-01\n")

	require.Len(t, c.Records, 1)
	r := c.Records[0]
	assert.Equal(t, "Jane Doe", r.DisplayName)
	assert.Equal(t, "jane@x.com", r.NormalizedEmail)
	assert.Equal(t, "jane doe", r.NormalizedName)
	assert.Equal(t, "cus_1", r.BillingReferenceID)
	assert.True(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Equal(r.SignupDate))
	assert.Equal(t, 2, r.Line)
	assert.Equal(t, "spring-2025", c.Tag)
	assert.Equal(t, "test.csv", c.Source)
}

func TestLoader_Load_DropsDuplicateEmails(t *testing.T) {
	c := load(t,
		"First Dup,dup@x.com,cus_1,2025-01-01\n"+
			"Second Dup,DUP@x.com ,cus_2,2025-01-02\n"+
			"Other,other@x.com,cus_3,2025-01-03\n")

	require.Len(t, c.Records, 2)
	assert.Equal(t, 1, c.DuplicatesRemoved)
	assert.Equal(t, "First Dup", c.Records[0].DisplayName, "first occurrence wins")
	assert.Equal(t, "other@x.com", c.Records[1].NormalizedEmail)
}

func TestLoader_Load_QuotedDelimiter(t *testing.T) {
	c := load(t, "\"Doe, Jane\",jane@x.com,cus_1,2025-01-01\n")

	require.Len(t, c.Records, 1)
	assert.Equal(t, "Doe, Jane", c.Records[0].DisplayName)
	assert.Equal(t, "doe, jane", c.Records[0].NormalizedName)
}

func TestLoader_Load_RowValidation(t *testing.T) {
	c := load(t,
		",blank@x.com,cus_1,2025-01-01\n"+
			"No Email,not-an-email,cus_2,2025-01-01\n"+
			"No Ref,noref@x.com,,2025-01-01\n"+
			"Bad Date,baddate@x.com,cus_4,someday\n"+
			"Short Row,short@x.com\n"+
			"Valid Person,valid@x.com,cus_6,2025-02-03\n")

	require.Len(t, c.Records, 1)
	assert.Equal(t, "valid@x.com", c.Records[0].NormalizedEmail)
	require.Len(t, c.RowErrors, 5)
	assert.Equal(t, 2, c.RowErrors[0].Line)
	assert.Contains(t, c.RowErrors[0].Reason, "name")
	assert.Contains(t, c.RowErrors[1].Reason, "email")
	assert.Contains(t, c.RowErrors[2].Reason, "billing")
	assert.Contains(t, c.RowErrors[3].Reason, "date")
	assert.Contains(t, c.RowErrors[4].Reason, "fields")
}

func TestLoader_Load_SkipsBlankRows(t *testing.T) {
	c := load(t, "Jane Doe,jane@x.com,cus_1,2025-01-01\n,,,\n")

	assert.Len(t, c.Records, 1)
	assert.Empty(t, c.RowErrors)
}

func TestLoader_Load_InvalidHeader(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty source", body: ""},
		{name: "missing column", body: "Customer Name,Customer Email,Signup Date\n"},
		{name: "wrong label", body: "Name,Customer Email,Ref,Signup Date\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(',', testutil.MakeNoopLogger())
			_, err := l.Load(context.Background(), "c", "s", strings.NewReader(tt.body))
			require.ErrorIs(t, err, ErrInvalidHeader)
		})
	}
}

func TestLoader_Load_CustomDelimiter(t *testing.T) {
	l := NewLoader(';', testutil.MakeNoopLogger())
	src := "Customer Name;Customer Email;Billing;Signup Date\nJane Doe;jane@x.com;cus_1;2025-01-01\n"

	c, err := l.Load(context.Background(), "c", "s", strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, c.Records, 1)
}

func TestLoader_Load_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader(',', testutil.MakeNoopLogger())
	_, err := l.Load(ctx, "c", "s", strings.NewReader(header+"Jane Doe,jane@x.com,cus_1,2025-01-01\n"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCohort_Contains(t *testing.T) {
	c := load(t, "Jane Doe,jane@x.com,cus_1,2025-01-01\n")

	assert.True(t, c.Contains("jane@x.com"))
	assert.True(t, c.Contains("  JANE@X.COM "))
	assert.False(t, c.Contains("john@x.com"))

	var nilCohort *Cohort
	assert.False(t, nilCohort.Contains("jane@x.com"))
	assert.Equal(t, 0, nilCohort.Len())
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Jane   Doe ", want: "jane doe"},
		{in: "JANE\tDOE", want: "jane doe"},
		{in: "José Nuñez", want: "josé nuñez"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), tt.in)
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, first, last string
	}{
		{in: "Jane Doe", first: "Jane", last: "Doe"},
		{in: "Mary Ann  van Dyke", first: "Mary", last: "Ann van Dyke"},
		{in: "Cher", first: "Cher", last: ""},
		{in: "   ", first: "", last: ""},
	}

	for _, tt := range tests {
		first, last := SplitName(tt.in)
		assert.Equal(t, tt.first, first, tt.in)
		assert.Equal(t, tt.last, last, tt.in)
	}
}
