package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/penalty"
	"github.com/fwojciec/penalty/mock"
	"github.com/fwojciec/penalty/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "https://ofac.treasury.gov/civil-penalties-and-enforcement-information"

type link struct {
	url      string
	text     *string
	recordID string
}

// fakeStore is an in-memory record and document store built from mocks.
type fakeStore struct {
	records   map[string]*penalty.Record
	documents map[string]bool
	upserts   []*penalty.Record
	links     []link
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*penalty.Record{}, documents: map[string]bool{}}
}

func (s *fakeStore) recordService() *mock.RecordService {
	return &mock.RecordService{
		FindRecordByIDFn: func(_ context.Context, id string) (*penalty.Record, error) {
			if r, ok := s.records[id]; ok {
				return r, nil
			}
			return nil, penalty.Errorf(penalty.ENOTFOUND, "record %q not found", id)
		},
		UpsertRecordFn: func(_ context.Context, r *penalty.Record) (bool, error) {
			s.records[r.ID] = r
			s.upserts = append(s.upserts, r)
			return true, nil
		},
	}
}

func (s *fakeStore) documentService() *mock.DocumentService {
	return &mock.DocumentService{
		FindDocumentByURLFn: func(_ context.Context, url string) (*penalty.Document, error) {
			if s.documents[url] {
				return &penalty.Document{URL: url}, nil
			}
			return nil, penalty.Errorf(penalty.ENOTFOUND, "document %q not found", url)
		},
		AddRecordDocumentFn: func(_ context.Context, r *penalty.Record, url string, text *string) (bool, error) {
			_, exists := s.records[r.ID]
			if !exists {
				s.records[r.ID] = r
				s.upserts = append(s.upserts, r)
			}
			s.documents[url] = true
			s.links = append(s.links, link{url: url, text: text, recordID: r.ID})
			return !exists, nil
		},
	}
}

func pdfDownloader(calls *int) *mock.Downloader {
	return &mock.Downloader{
		DownloadFn: func(_ context.Context, url string) ([]byte, error) {
			*calls++
			return []byte("%PDF " + url), nil
		},
	}
}

func echoExtractor() *mock.TextExtractor {
	return &mock.TextExtractor{
		ExtractTextFn: func(_ context.Context, pdf []byte) (string, error) {
			return "text of " + string(pdf), nil
		},
	}
}

func sampleRows() []penalty.RawRow {
	return []penalty.RawRow{
		{Position: 0, Year: 2024, DateText: "01/02/2024", Name: "Acme Corp", PenaltyCountText: "2", AmountText: "$12,345.67", DocumentURL: "/media/1/download?inline"},
		{Position: 1, Year: 2024, DateText: "02/03/2024", Name: "Beta LLC", PenaltyCountText: "1", AmountText: "$500", DocumentURL: "https://ofac.treasury.gov/media/2/download?inline"},
	}
}

func TestIngester_IngestRows(t *testing.T) {
	t.Parallel()

	t.Run("stores records and links downloaded documents", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			BaseURL:    baseURL,
		}

		result, err := in.IngestRows(context.Background(), sampleRows())

		require.NoError(t, err)
		assert.Equal(t, 2, result.Inserted)
		assert.Equal(t, 2, result.Downloaded)
		assert.Zero(t, result.WithoutText)
		assert.Equal(t, 2, downloads)

		require.Len(t, store.upserts, 2)
		assert.Equal(t, "0-2024", store.upserts[0].ID)
		assert.Equal(t, day(2024, 1, 2), store.upserts[0].Date)
		assert.Equal(t, 2, store.upserts[0].PenaltyCount)
		assert.InDelta(t, 12345.67, store.upserts[0].TotalAmountUSD, 0.001)
		assert.Equal(t, "1-2024", store.upserts[1].ID)

		require.Len(t, store.links, 2)
		assert.Equal(t, "https://ofac.treasury.gov/media/1/download?inline", store.links[0].url)
		require.NotNil(t, store.links[0].text)
		assert.Equal(t, "text of %PDF https://ofac.treasury.gov/media/1/download?inline", *store.links[0].text)
		assert.Equal(t, "0-2024", store.links[0].recordID)
	})

	t.Run("skips rows with invalid dates and continues", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			BaseURL:    baseURL,
		}

		rows := sampleRows()
		rows[0].DateText = "TBD"
		result, err := in.IngestRows(context.Background(), rows)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Invalid)
		assert.Equal(t, 1, result.Inserted)
		require.Len(t, store.upserts, 1)
		assert.Equal(t, "1-2024", store.upserts[0].ID)
	})

	t.Run("leaves existing records alone", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		existing := &penalty.Record{ID: "0-2024", Date: day(2024, 1, 2), Name: "Old Name"}
		store.records["0-2024"] = existing

		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			BaseURL:    baseURL,
		}

		result, err := in.IngestRows(context.Background(), sampleRows())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Existing)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 1, downloads)
		assert.Same(t, existing, store.records["0-2024"])
	})

	t.Run("stores documents without text when download fails", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		in := &reconcile.Ingester{
			Records:   store.recordService(),
			Documents: store.documentService(),
			Downloader: &mock.Downloader{
				DownloadFn: func(_ context.Context, _ string) ([]byte, error) {
					return nil, penalty.Errorf(penalty.EFETCH, "status 500")
				},
			},
			Extractor: echoExtractor(),
			BaseURL:   baseURL,
		}

		result, err := in.IngestRows(context.Background(), sampleRows()[:1])

		require.NoError(t, err)
		assert.Equal(t, 1, result.Inserted)
		assert.Equal(t, 1, result.WithoutText)
		require.Len(t, store.links, 1)
		assert.Nil(t, store.links[0].text)
	})

	t.Run("stores documents without text when extraction fails", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor: &mock.TextExtractor{
				ExtractTextFn: func(_ context.Context, _ []byte) (string, error) {
					return "", errors.New("not a pdf")
				},
			},
			BaseURL: baseURL,
		}

		result, err := in.IngestRows(context.Background(), sampleRows()[:1])

		require.NoError(t, err)
		assert.Equal(t, 1, result.WithoutText)
		require.Len(t, store.links, 1)
		assert.Nil(t, store.links[0].text)
	})

	t.Run("does not download a stored document again", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		rows := sampleRows()
		rows[1].DocumentURL = rows[0].DocumentURL

		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			BaseURL:    baseURL,
		}

		result, err := in.IngestRows(context.Background(), rows)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Inserted)
		assert.Equal(t, 1, downloads)
		require.Len(t, store.links, 2)
		assert.Nil(t, store.links[1].text, "existing text is kept by the store")
		assert.Equal(t, "1-2024", store.links[1].recordID)
	})

	t.Run("waits on the limiter with the document host", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		var hosts []string
		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			Limiter: &mock.DomainLimiter{
				WaitFn: func(_ context.Context, domain string) error {
					hosts = append(hosts, domain)
					return nil
				},
			},
			BaseURL: baseURL,
		}

		_, err := in.IngestRows(context.Background(), sampleRows())

		require.NoError(t, err)
		assert.Equal(t, []string{"ofac.treasury.gov", "ofac.treasury.gov"}, hosts)
	})

	t.Run("assigns content ids when configured", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  store.documentService(),
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			BaseURL:    baseURL,
			IDScheme:   penalty.IDSchemeContent,
		}

		rows := sampleRows()
		rows = append(rows, rows[0])
		rows[2].Position = 2

		_, err := in.IngestRows(context.Background(), rows)

		require.NoError(t, err)
		require.Len(t, store.upserts, 3)
		assert.Regexp(t, `^c-[0-9a-f]{16}$`, store.upserts[0].ID)
		assert.Equal(t, store.upserts[0].ID+"-1", store.upserts[2].ID)
	})

	t.Run("store error aborts the pass", func(t *testing.T) {
		t.Parallel()

		store := newFakeStore()
		documents := store.documentService()
		documents.AddRecordDocumentFn = func(context.Context, *penalty.Record, string, *string) (bool, error) {
			return false, errors.New("disk full")
		}

		var downloads int
		in := &reconcile.Ingester{
			Records:    store.recordService(),
			Documents:  documents,
			Downloader: pdfDownloader(&downloads),
			Extractor:  echoExtractor(),
			BaseURL:    baseURL,
		}

		_, err := in.IngestRows(context.Background(), sampleRows())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, 1, downloads)
		assert.Empty(t, store.links)
	})
}
