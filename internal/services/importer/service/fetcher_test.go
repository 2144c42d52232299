package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/testkit"
)

func newTestFetcher(api *fakeSearch, clk *testkit.Clock) (*Fetcher, *countingAdmitter) {
	adm := &countingAdmitter{}
	return NewFetcher(api, adm, salesnav.Transformer{}, FetcherConfig{Sleep: clk.Sleep}), adm
}

func TestFetch_StopsOnShortPage(t *testing.T) {
	t.Parallel()

	clk := testkit.NewClock(t0)
	api := &fakeSearch{fn: func(page, _ int) (salesnav.RawPage, error) {
		if page == 1 {
			return pageOf(25, 500), nil
		}
		return pageOf(10, 500), nil
	}}
	f, adm := newTestFetcher(api, clk)

	var pct []float64
	recs, err := f.Fetch(context.Background(), "u", salesnav.KindPerson, "c", func(p float64, status string) {
		pct = append(pct, p)
		if status != "Fetching Sales Navigator data..." {
			t.Errorf("status=%q", status)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 35 {
		t.Fatalf("records=%d want 35 even though the server reports 500", len(recs))
	}
	if !slices.Equal(api.fetches, []int{1, 2}) || adm.n != 2 {
		t.Fatalf("fetches=%v admits=%d", api.fetches, adm.n)
	}
	if !slices.Equal(pct, []float64{41.5, 43}) {
		t.Fatalf("progress=%v", pct)
	}
	if got := clk.Sleeps(); !slices.Equal(got, []time.Duration{2 * time.Second}) {
		t.Fatalf("sleeps=%v want one page delay", got)
	}
}

func TestFetch_NeverExceedsCaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind       salesnav.Kind
		maxPages   int
		maxRecords int
	}{
		{salesnav.KindPerson, 80, 2000},
		{salesnav.KindOrganization, 40, 1000},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()
			api := &fakeSearch{fn: func(int, int) (salesnav.RawPage, error) { return pageOf(25, 100000), nil }}
			f, _ := newTestFetcher(api, testkit.NewClock(t0))

			var last float64
			recs, err := f.Fetch(context.Background(), "u", tc.kind, "", func(p float64, _ string) { last = p })
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != tc.maxRecords {
				t.Fatalf("records=%d want %d", len(recs), tc.maxRecords)
			}
			if len(api.fetches) != tc.maxPages {
				t.Fatalf("pages=%d want %d", len(api.fetches), tc.maxPages)
			}
			if last != 60 {
				t.Fatalf("progress capped at %v want 60", last)
			}
		})
	}
}

func TestFetch_RateLimitedPageIsRetried(t *testing.T) {
	t.Parallel()

	clk := testkit.NewClock(t0)
	api := &fakeSearch{fn: func(page, attempt int) (salesnav.RawPage, error) {
		switch {
		case page == 1:
			return pageOf(25, 40), nil
		case page == 2 && attempt == 1:
			return salesnav.RawPage{}, perr.TooManyRequestsf("Rate limited. Please wait a moment and try again.")
		default:
			return pageOf(15, 40), nil
		}
	}}
	f, adm := newTestFetcher(api, clk)

	recs, err := f.Fetch(context.Background(), "u", salesnav.KindPerson, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 40 {
		t.Fatalf("records=%d want 40", len(recs))
	}
	if !slices.Equal(api.fetches, []int{1, 2, 2}) || adm.n != 3 {
		t.Fatalf("fetches=%v admits=%d", api.fetches, adm.n)
	}
	want := []time.Duration{2 * time.Second, 5 * time.Second}
	if got := clk.Sleeps(); !slices.Equal(got, want) {
		t.Fatalf("sleeps=%v want %v", got, want)
	}
}

func TestFetch_AuthFailureIsFatal(t *testing.T) {
	t.Parallel()

	for _, code := range []perr.ErrorCode{perr.ErrorCodeUnauthorized, perr.ErrorCodeForbidden} {
		api := &fakeSearch{fn: func(page, _ int) (salesnav.RawPage, error) {
			if page == 1 {
				return pageOf(25, 100), nil
			}
			return salesnav.RawPage{}, perr.New(code, "denied")
		}}
		f, _ := newTestFetcher(api, testkit.NewClock(t0))

		recs, err := f.Fetch(context.Background(), "u", salesnav.KindPerson, "", nil)
		if !perr.IsCode(err, code) || recs != nil {
			t.Fatalf("code %v: records=%d err=%v", code, len(recs), err)
		}
		if !slices.Equal(api.fetches, []int{1, 2}) {
			t.Fatalf("auth failure must not be retried, fetches=%v", api.fetches)
		}
	}
}

func TestFetch_OtherFailureEndsWalk(t *testing.T) {
	t.Parallel()

	api := &fakeSearch{fn: func(page, _ int) (salesnav.RawPage, error) {
		if page <= 2 {
			return pageOf(25, 1000), nil
		}
		return salesnav.RawPage{}, perr.Unavailablef("LinkedIn API error: 500")
	}}
	f, _ := newTestFetcher(api, testkit.NewClock(t0))

	recs, err := f.Fetch(context.Background(), "u", salesnav.KindPerson, "", nil)
	if err != nil {
		t.Fatalf("err=%v want nil", err)
	}
	if len(recs) != 50 || !slices.Equal(api.fetches, []int{1, 2, 3}) {
		t.Fatalf("records=%d fetches=%v", len(recs), api.fetches)
	}
}

func TestFetch_BadURLIsFatal(t *testing.T) {
	t.Parallel()

	api := &fakeSearch{urlErr: perr.InvalidArgf("search url has no recentSearchId, savedSearchId or query")}
	f, _ := newTestFetcher(api, testkit.NewClock(t0))

	_, err := f.Fetch(context.Background(), "u", salesnav.KindPerson, "", nil)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) || len(api.fetches) != 0 {
		t.Fatalf("err=%v fetches=%v", err, api.fetches)
	}
}

func TestFetch_CanceledDuringPageDelay(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeSearch{fn: func(int, int) (salesnav.RawPage, error) {
		cancel()
		return pageOf(25, 100), nil
	}}
	f, _ := newTestFetcher(api, testkit.NewClock(t0))

	_, err := f.Fetch(ctx, "u", salesnav.KindPerson, "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestFetch_DropsBadElements(t *testing.T) {
	t.Parallel()

	api := &fakeSearch{fn: func(int, int) (salesnav.RawPage, error) {
		p := pageOf(24, 25)
		p.Elements = append(p.Elements, []byte(`"not an object"`))
		return p, nil
	}}
	f, _ := newTestFetcher(api, testkit.NewClock(t0))

	recs, err := f.Fetch(context.Background(), "u", salesnav.KindPerson, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 24 || len(api.fetches) != 1 {
		t.Fatalf("a page with a dropped element counts as short: records=%d fetches=%v", len(recs), api.fetches)
	}
}
