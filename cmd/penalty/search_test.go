package main_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/penalty"
	main "github.com/fwojciec/penalty/cmd/penalty"
	"github.com/fwojciec/penalty/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func sampleResult() *penalty.SearchResult {
	return &penalty.SearchResult{
		Record: &penalty.Record{
			ID:             "0-2024",
			Date:           time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Name:           "First Bank of Nowhere",
			PenaltyCount:   3,
			TotalAmountUSD: 1234567.5,
		},
		Documents: []*penalty.Document{
			{URL: "https://example.com/a.pdf", Text: ptr("The bank agreed to settle.\fA second page about the bank.")},
			{URL: "https://example.com/b.pdf"},
		},
	}
}

func newSearchDeps(search *mock.SearchService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Search: search,
	}, stdout, stderr
}

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints results with excerpts", func(t *testing.T) {
		t.Parallel()

		var got penalty.SearchQuery
		deps, stdout, stderr := newSearchDeps(&mock.SearchService{
			SearchFn: func(_ context.Context, q penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
				got = q
				return []*penalty.SearchResult{sampleResult()}, 1, nil
			},
		})

		cmd := &main.SearchCmd{Query: "bank", Page: 1, PerPage: 20, Excerpts: 10}
		cmd.Mode = "exact"
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Empty(t, stderr.String())
		assert.Equal(t, penalty.SearchQuery{Text: "bank", Mode: penalty.MatchExact, Limit: 20}, got)

		out := stdout.String()
		assert.Contains(t, out, "2024-01-02  First **Bank** of Nowhere")
		assert.Contains(t, out, "3 penalties  $1,234,567.50")
		assert.Contains(t, out, "[p.1] The **bank** agreed to settle.")
		assert.Contains(t, out, "[p.2] A second page about the **bank**.")
		assert.Contains(t, out, "https://example.com/b.pdf\n    (no text available)")
		assert.Contains(t, out, "Page 1 of 1 (1 matching actions)")
	})

	t.Run("limits excerpts per document", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newSearchDeps(&mock.SearchService{
			SearchFn: func(context.Context, penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
				return []*penalty.SearchResult{sampleResult()}, 1, nil
			},
		})

		cmd := &main.SearchCmd{Query: "bank", Page: 1, PerPage: 20, Excerpts: 1}
		require.NoError(t, cmd.Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "[p.1]")
		assert.NotContains(t, out, "[p.2]")
		assert.Contains(t, out, "(1 more, see: penalty excerpts \"bank\" --url https://example.com/a.pdf)")
	})

	t.Run("pages through results", func(t *testing.T) {
		t.Parallel()

		var got penalty.SearchQuery
		deps, stdout, _ := newSearchDeps(&mock.SearchService{
			SearchFn: func(_ context.Context, q penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
				got = q
				return []*penalty.SearchResult{sampleResult()}, 45, nil
			},
		})

		cmd := &main.SearchCmd{Page: 3, PerPage: 20}
		cmd.From = "2020-01-01"
		cmd.To = "2024-12-31"
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, 40, got.Offset)
		assert.Equal(t, 20, got.Limit)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), got.From)
		assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), got.To)
		assert.Contains(t, stdout.String(), "Page 3 of 3 (45 matching actions)")
	})

	t.Run("reports no matches", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newSearchDeps(&mock.SearchService{
			SearchFn: func(context.Context, penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
				return nil, 0, nil
			},
		})

		cmd := &main.SearchCmd{Query: "nothing", Page: 1, PerPage: 20}
		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, "No matching actions.\n", stdout.String())
	})

	t.Run("accepts match mode aliases", func(t *testing.T) {
		t.Parallel()

		var got penalty.SearchQuery
		deps, _, _ := newSearchDeps(&mock.SearchService{
			SearchFn: func(_ context.Context, q penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
				got = q
				return nil, 0, nil
			},
		})

		cmd := &main.SearchCmd{Query: "tax taxation", Page: 1, PerPage: 20}
		cmd.Mode = "any_word"
		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, penalty.MatchAnyWord, got.Mode)
	})

	for name, cmd := range map[string]*main.SearchCmd{
		"unknown mode":  {Page: 1, PerPage: 20, QueryFlags: main.QueryFlags{Mode: "fuzzy"}},
		"bad date":      {Page: 1, PerPage: 20, QueryFlags: main.QueryFlags{From: "01/02/2024"}},
		"inverted date": {Page: 1, PerPage: 20, QueryFlags: main.QueryFlags{From: "2024-02-01", To: "2024-01-01"}},
		"zero page":     {Page: 0, PerPage: 20},
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			t.Parallel()

			deps, _, stderr := newSearchDeps(&mock.SearchService{
				SearchFn: func(context.Context, penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
					t.Fatal("search must not run")
					return nil, 0, nil
				},
			})

			err := cmd.Run(deps)
			require.Error(t, err)
			assert.Equal(t, penalty.EINVALID, penalty.ErrorCode(err))
			assert.True(t, strings.HasPrefix(stderr.String(), "error: "))
		})
	}

	t.Run("returns store errors", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newSearchDeps(&mock.SearchService{
			SearchFn: func(context.Context, penalty.SearchQuery) ([]*penalty.SearchResult, int, error) {
				return nil, 0, errors.New("disk gone")
			},
		})

		err := (&main.SearchCmd{Page: 1, PerPage: 20}).Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: Internal error.")
	})
}
