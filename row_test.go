package penalty_test

import (
	"testing"
	"time"

	"github.com/fwojciec/penalty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDates(t *testing.T) {
	t.Parallel()

	t.Run("parses primary and revision date", func(t *testing.T) {
		t.Parallel()

		date, revision, err := penalty.ParseDates("01/02/2024 (Revised 03/04/2024)")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), date)
		require.NotNil(t, revision)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), *revision)
	})

	t.Run("parses date without revision", func(t *testing.T) {
		t.Parallel()

		date, revision, err := penalty.ParseDates("12/31/2019")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), date)
		assert.Nil(t, revision)
	})

	t.Run("accepts single digit month and day", func(t *testing.T) {
		t.Parallel()

		date, _, err := penalty.ParseDates("1/2/2024")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("strips hidden non-ASCII characters", func(t *testing.T) {
		t.Parallel()

		date, _, err := penalty.ParseDates("\u200b07/15/2023\u00a0")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC), date)
	})

	t.Run("rejects unparseable primary date", func(t *testing.T) {
		t.Parallel()

		_, _, err := penalty.ParseDates("July 15, 2023")

		require.Error(t, err)
		assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
	})

	t.Run("rejects unparseable revision date", func(t *testing.T) {
		t.Parallel()

		_, _, err := penalty.ParseDates("01/02/2024 (Revised soon)")

		require.Error(t, err)
		assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
	})
}

func TestExtractNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"amount with separators and cents", "$12,345.67 total", 12345.67},
		{"no numbers", "no numbers here", 0},
		{"plain integer", "3", 3},
		{"first number wins", "2 (settled 1)", 2},
		{"large amount", "$1,234,567", 1234567},
		{"empty", "", 0},
		{"stray comma before number", ", 5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tt.want, penalty.ExtractNumber(tt.in), 1e-9)
		})
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	const base = "https://ofac.treasury.gov"

	t.Run("resolves root-relative URL", func(t *testing.T) {
		t.Parallel()

		got, err := penalty.ResolveURL(base, "/media/12345/download?inline")

		require.NoError(t, err)
		assert.Equal(t, "https://ofac.treasury.gov/media/12345/download?inline", got)
	})

	t.Run("keeps absolute URL", func(t *testing.T) {
		t.Parallel()

		got, err := penalty.ResolveURL(base, "https://home.treasury.gov/x.pdf")

		require.NoError(t, err)
		assert.Equal(t, "https://home.treasury.gov/x.pdf", got)
	})

	t.Run("rejects empty href", func(t *testing.T) {
		t.Parallel()

		_, err := penalty.ResolveURL(base, "  ")

		assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
	})
}

func TestParseRow(t *testing.T) {
	t.Parallel()

	t.Run("parses every field", func(t *testing.T) {
		t.Parallel()

		row, err := penalty.ParseRow(penalty.RawRow{
			Position:         4,
			Year:             2024,
			DateText:         "01/02/2024 (Revised 03/04/2024)",
			Name:             "  Acme Trading LLC ",
			PenaltyCountText: "2",
			AmountText:       "$12,345.67",
			DocumentURL:      "/media/1/download",
		}, "https://ofac.treasury.gov")

		require.NoError(t, err)
		assert.Equal(t, 4, row.Position)
		assert.Equal(t, 2024, row.Year)
		assert.Equal(t, "Acme Trading LLC", row.Name)
		assert.Equal(t, 2, row.PenaltyCount)
		assert.InDelta(t, 12345.67, row.TotalAmountUSD, 1e-9)
		assert.Equal(t, "https://ofac.treasury.gov/media/1/download", row.DocumentURL)
		require.NotNil(t, row.RevisionDate)

		rec := row.Record("4-2024")
		assert.Equal(t, "4-2024", rec.ID)
		assert.Equal(t, row.Date, rec.Date)
		assert.Equal(t, "Acme Trading LLC", rec.Name)
	})

	t.Run("lenient numbers default to zero", func(t *testing.T) {
		t.Parallel()

		row, err := penalty.ParseRow(penalty.RawRow{
			DateText:         "01/02/2024",
			Name:             "Acme",
			PenaltyCountText: "n/a",
			AmountText:       "Finding of Violation",
			DocumentURL:      "https://example.com/a.pdf",
		}, "https://example.com")

		require.NoError(t, err)
		assert.Equal(t, 0, row.PenaltyCount)
		assert.Zero(t, row.TotalAmountUSD)
	})

	t.Run("bad date fails the row", func(t *testing.T) {
		t.Parallel()

		_, err := penalty.ParseRow(penalty.RawRow{
			DateText:    "TBD",
			DocumentURL: "/a.pdf",
		}, "https://example.com")

		assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
	})
}
