package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"

	"github.com/caselawlab/courtcrawl/internal/testutil"
	"github.com/caselawlab/courtcrawl/pkg/client"
	"github.com/caselawlab/courtcrawl/pkg/courtlistener"
	"github.com/caselawlab/courtcrawl/pkg/record"
)

// setupCrawl starts a mock API and returns a transport pointed at it.
func setupCrawl(t *testing.T) (*testutil.MockCourtListener, *client.Client) {
	t.Helper()

	mock := testutil.NewMockCourtListener()
	t.Cleanup(mock.Close)

	c, err := client.New(client.DefaultConfig("test-token"))
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return mock, c
}

func docketFixture(id int64, clusterRefs ...string) string {
	return testutil.MarshalJSON(courtlistener.Docket{
		ID:           id,
		DocketNumber: fmt.Sprintf("22-%d", id),
		CaseName:     fmt.Sprintf("Case %d", id),
		CourtID:      "scotus",
		Clusters:     clusterRefs,
	})
}

func clusterFixture(id int64, opinionRefs ...string) string {
	return testutil.MarshalJSON(courtlistener.Cluster{
		ID:          id,
		CaseName:    fmt.Sprintf("Case for cluster %d", id),
		SubOpinions: opinionRefs,
	})
}

func opinionFixture(id int64, text string) string {
	return testutil.MarshalJSON(courtlistener.Opinion{
		ID:        id,
		Type:      "010combined",
		PlainText: text,
	})
}

func TestNew_Validation(t *testing.T) {
	getter := &client.Client{}

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "missing getter",
			cfg:     Config{},
			wantErr: ErrNoGetter,
		},
		{
			name:    "malformed base url",
			cfg:     Config{Getter: getter, BaseURL: "://nope"},
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "unsupported scheme",
			cfg:     Config{Getter: getter, BaseURL: "ftp://example.com"},
			wantErr: ErrInvalidBaseURL,
		},
		{
			name: "valid",
			cfg:  Config{Getter: getter, BaseURL: "https://example.com/api/rest/v4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("New returned %v, want success", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New returned %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_PaginatedListing(t *testing.T) {
	mock, c := setupCrawl(t)

	// Two listing pages: two dockets, then one. Handlers are keyed by
	// path, so one handler dispatches on the cursor query param.
	pageOne := testutil.ListEnvelope(mock.URL()+"/dockets/?page=2",
		docketFixture(1, mock.URL()+"/clusters/11/"),
		docketFixture(2, mock.URL()+"/clusters/21/"),
	)
	pageTwo := testutil.ListEnvelope("",
		docketFixture(3, mock.URL()+"/clusters/31/"),
	)
	mock.SetHandler("/dockets/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, pageTwo)
			return
		}
		fmt.Fprint(w, pageOne)
	})

	for _, cl := range []int64{11, 21, 31} {
		mock.SetResource("clusters", fmt.Sprint(cl),
			clusterFixture(cl, fmt.Sprintf("%s/opinions/%d/", mock.URL(), cl*10)))
		mock.SetResource("opinions", fmt.Sprint(cl*10),
			opinionFixture(cl*10, "The judgment is affirmed."))
	}

	cr, err := New(Config{Getter: c, BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Run yielded %d records, want 3", len(records))
	}
	for i, wantDocket := range []int64{1, 2, 3} {
		if records[i].DocketID != wantDocket {
			t.Errorf("record %d docket = %d, want %d", i, records[i].DocketID, wantDocket)
		}
	}

	stats := cr.Stats()
	if stats.DocketsProcessed != 3 || stats.Records != 3 {
		t.Errorf("stats = %+v, want 3 dockets and 3 records", stats)
	}
}

func TestRun_DocketWithoutClusters(t *testing.T) {
	mock, c := setupCrawl(t)

	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("", docketFixture(1)))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Run yielded %d records, want 0", len(records))
	}

	stats := cr.Stats()
	if stats.DocketsProcessed != 1 {
		t.Errorf("DocketsProcessed = %d, want 1", stats.DocketsProcessed)
	}
	if stats.ClustersAttempted != 0 {
		t.Errorf("ClustersAttempted = %d, want 0", stats.ClustersAttempted)
	}
}

func TestRun_ClusterFailureSkipsSubtree(t *testing.T) {
	mock, c := setupCrawl(t)

	// One docket with two clusters; the first 404s, the second resolves.
	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/404404/", mock.URL()+"/clusters/7/"),
	))
	mock.SetResource("clusters", "7", clusterFixture(7, mock.URL()+"/opinions/70/"))
	mock.SetResource("opinions", "70", opinionFixture(70, "Reversed and remanded."))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should not fail on a cluster fetch error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Run yielded %d records, want 1 from the surviving cluster", len(records))
	}
	if records[0].ClusterID != 7 {
		t.Errorf("record cluster = %d, want 7", records[0].ClusterID)
	}

	stats := cr.Stats()
	if stats.ClustersAttempted != 2 || stats.ClustersSkipped != 1 {
		t.Errorf("stats = %+v, want 2 clusters attempted and 1 skipped", stats)
	}
}

func TestRun_OpinionFailureSkipsSiblingUnaffected(t *testing.T) {
	mock, c := setupCrawl(t)

	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/7/"),
	))
	// Opinion 71 is unconfigured and 404s; 72 resolves.
	mock.SetResource("clusters", "7",
		clusterFixture(7, mock.URL()+"/opinions/71/", mock.URL()+"/opinions/72/"))
	mock.SetResource("opinions", "72", opinionFixture(72, "Dissenting."))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run should not fail on an opinion fetch error: %v", err)
	}

	if len(records) != 1 || records[0].OpinionID != 72 {
		t.Fatalf("records = %+v, want exactly opinion 72", records)
	}

	stats := cr.Stats()
	if stats.OpinionsAttempted != 2 || stats.OpinionsSkipped != 1 {
		t.Errorf("stats = %+v, want 2 opinions attempted and 1 skipped", stats)
	}
}

func TestRun_EmptyOpinionTextGate(t *testing.T) {
	mock, c := setupCrawl(t)

	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/7/"),
	))
	mock.SetResource("clusters", "7",
		clusterFixture(7, mock.URL()+"/opinions/71/", mock.URL()+"/opinions/72/"))
	mock.SetResource("opinions", "71", opinionFixture(71, "We hold the statute valid."))
	mock.SetResource("opinions", "72", opinionFixture(72, "   \n\t  "))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(records) != 1 || records[0].OpinionID != 71 {
		t.Fatalf("records = %+v, want exactly opinion 71", records)
	}

	stats := cr.Stats()
	if stats.OpinionsEmpty != 1 {
		t.Errorf("OpinionsEmpty = %d, want 1", stats.OpinionsEmpty)
	}
	if stats.OpinionsSkipped != 0 {
		t.Errorf("OpinionsSkipped = %d, want 0 (empty text is a gate, not a failure)", stats.OpinionsSkipped)
	}
}

func TestRun_DocketCap(t *testing.T) {
	mock, c := setupCrawl(t)

	// Three dockets on one page, cap at two. No clusters, so the cap is
	// the only bound in play.
	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1), docketFixture(2), docketFixture(3),
	))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL(), DocketCap: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := cr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := cr.Stats().DocketsProcessed; got != 2 {
		t.Errorf("DocketsProcessed = %d, want 2", got)
	}
}

func TestRun_DocketCapIgnoresUndecodableItems(t *testing.T) {
	mock, c := setupCrawl(t)

	// An undecodable listing item must not consume the cap: with a cap
	// of two, both decodable dockets behind it are still traversed.
	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		`"bogus"`, docketFixture(1), docketFixture(2),
	))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL(), DocketCap: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := cr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := cr.Stats().DocketsProcessed; got != 2 {
		t.Errorf("DocketsProcessed = %d, want 2", got)
	}
}

func TestRun_OnRecordMayReadStats(t *testing.T) {
	mock, c := setupCrawl(t)

	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/11/"),
	))
	mock.SetResource("clusters", "11", clusterFixture(11, mock.URL()+"/opinions/110/"))
	mock.SetResource("opinions", "110", opinionFixture(110, "Affirmed."))

	var cr *Crawler
	var seen []int
	cfg := Config{
		Getter:  c,
		BaseURL: mock.URL(),
		OnRecord: func(record.CrawlRecord) {
			seen = append(seen, cr.Stats().Records)
		},
	}

	cr, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := cr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The record counter is already bumped when the callback fires.
	if len(seen) != 1 || seen[0] != 1 {
		t.Errorf("stats snapshots from callback = %v, want [1]", seen)
	}
}

func TestRun_CourtFilterParam(t *testing.T) {
	mock, c := setupCrawl(t)
	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope(""))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL(), Court: "scotus"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cr.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	uris := mock.GetRequestURIs()
	if len(uris) != 1 || uris[0] != "/dockets/?court=scotus" {
		t.Errorf("request URIs = %v, want [/dockets/?court=scotus]", uris)
	}
}

func TestRun_Idempotent(t *testing.T) {
	mock, c := setupCrawl(t)

	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/11/"),
		docketFixture(2, mock.URL()+"/clusters/21/"),
	))
	mock.SetResource("clusters", "11", clusterFixture(11, mock.URL()+"/opinions/110/"))
	mock.SetResource("clusters", "21", clusterFixture(21, mock.URL()+"/opinions/210/"))
	mock.SetResource("opinions", "110", opinionFixture(110, "Affirmed."))
	mock.SetResource("opinions", "210", opinionFixture(210, "Reversed."))

	run := func() []record.CrawlRecord {
		cr, err := New(Config{Getter: c, BaseURL: mock.URL()})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		records, err := cr.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return records
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical source data produced different records")
	}
}

func TestRun_CancellationReturnsPrefix(t *testing.T) {
	mock, c := setupCrawl(t)

	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/11/"),
		docketFixture(2, mock.URL()+"/clusters/21/"),
	))
	mock.SetResource("clusters", "11", clusterFixture(11, mock.URL()+"/opinions/110/"))
	mock.SetResource("clusters", "21", clusterFixture(21, mock.URL()+"/opinions/210/"))
	mock.SetResource("opinions", "110", opinionFixture(110, "Affirmed."))
	mock.SetResource("opinions", "210", opinionFixture(210, "Reversed."))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel as soon as the first record lands; the run must stop with
	// that record as a valid prefix.
	cr, err := New(Config{
		Getter:   c,
		BaseURL:  mock.URL(),
		OnRecord: func(record.CrawlRecord) { cancel() },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if len(records) != 1 || records[0].OpinionID != 110 {
		t.Errorf("records = %+v, want the single pre-cancellation record", records)
	}
}

func TestRun_ParallelOpinionsKeepReferenceOrder(t *testing.T) {
	mock, c := setupCrawl(t)

	opinionRefs := make([]string, 6)
	for i := range opinionRefs {
		id := int64(100 + i)
		opinionRefs[i] = fmt.Sprintf("%s/opinions/%d/", mock.URL(), id)
		mock.SetResource("opinions", fmt.Sprint(id),
			opinionFixture(id, fmt.Sprintf("Opinion body %d.", id)))
	}
	mock.SetJSON("/dockets/", 200, testutil.ListEnvelope("",
		docketFixture(1, mock.URL()+"/clusters/7/"),
	))
	mock.SetResource("clusters", "7", clusterFixture(7, opinionRefs...))

	cr, err := New(Config{Getter: c, BaseURL: mock.URL(), Concurrency: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	records, err := cr.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(records) != 6 {
		t.Fatalf("Run yielded %d records, want 6", len(records))
	}
	for i, rec := range records {
		if want := int64(100 + i); rec.OpinionID != want {
			t.Errorf("record %d opinion = %d, want %d (reference order)", i, rec.OpinionID, want)
		}
	}
}
