package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/crm"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/adapters/salesnav"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/services/importer/domain"
)

var t0 = time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

// pageOf returns a page holding n person elements
func pageOf(n, total int) salesnav.RawPage {
	var p salesnav.RawPage
	for i := range n {
		p.Elements = append(p.Elements, json.RawMessage(fmt.Sprintf(
			`{"entityUrn":"urn:li:fs_salesProfile:(id%d,NAME_SEARCH,x)","fullName":"Person %d"}`, i, i)))
	}
	p.Paging.Total = total
	return p
}

// fakeSearch answers page numbers through fn; attempt counts calls per page from 1
type fakeSearch struct {
	mu       sync.Mutex
	fn       func(page, attempt int) (salesnav.RawPage, error)
	attempts map[int]int
	urlErr   error
	fetches  []int
}

func (f *fakeSearch) PageURL(_ string, _ salesnav.Kind, page int) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "page:" + strconv.Itoa(page), nil
}

func (f *fakeSearch) FetchPage(_ context.Context, pageURL, _ string) (salesnav.RawPage, error) {
	page, _ := strconv.Atoi(strings.TrimPrefix(pageURL, "page:"))
	f.mu.Lock()
	if f.attempts == nil {
		f.attempts = map[int]int{}
	}
	f.attempts[page]++
	attempt := f.attempts[page]
	f.fetches = append(f.fetches, page)
	f.mu.Unlock()
	return f.fn(page, attempt)
}

// fullPages serves full pages until the n-th record, then a short or empty page
func fullPages(n int) func(page, attempt int) (salesnav.RawPage, error) {
	return func(page, _ int) (salesnav.RawPage, error) {
		left := n - (page-1)*salesnav.PageSize
		return pageOf(max(min(left, salesnav.PageSize), 0), n), nil
	}
}

type countingAdmitter struct{ n int }

func (a *countingAdmitter) Admit(ctx context.Context) error {
	a.n++
	return ctx.Err()
}

// fakeCRM records the write sequence
type fakeCRM struct {
	mu       sync.Mutex
	calls    []string
	segment  crm.Segment
	spec     crm.SourceSpec
	account  string
	cookies  string
	contacts any

	createErr, addErr, getErr, patchErr error

	patchedValues, patchedSources []crm.Entry
}

func (f *fakeCRM) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeCRM) CreateSource(_ context.Context, cookies, accountID string, spec crm.SourceSpec) (crm.ID, error) {
	f.record("create")
	f.spec, f.account, f.cookies = spec, accountID, cookies
	if f.createErr != nil {
		return "", f.createErr
	}
	return "src-new", nil
}

func (f *fakeCRM) AddContacts(_ context.Context, _, _ string, sourceID crm.ID, contacts any) error {
	f.record("add:" + string(sourceID))
	f.contacts = contacts
	return f.addErr
}

func (f *fakeCRM) GetSegment(_ context.Context, _, _ string, segmentID crm.ID) (crm.Segment, error) {
	f.record("get:" + string(segmentID))
	if f.getErr != nil {
		return crm.Segment{}, f.getErr
	}
	return f.segment, nil
}

func (f *fakeCRM) PatchSegment(_ context.Context, _, _ string, segmentID crm.ID, values, sources []crm.Entry) error {
	f.record("patch:" + string(segmentID))
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patchedValues, f.patchedSources = values, sources
	f.segment.ConditionValues, f.segment.Sources = values, sources
	return nil
}

// memKV is a map backed domain.KV with an optional failure switch
type memKV struct {
	mu   sync.Mutex
	m    map[string][]byte
	fail error
}

func newMemKV() *memKV { return &memKV{m: map[string][]byte{}} }

func (k *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.fail != nil {
		return nil, false, k.fail
	}
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Set(_ context.Context, key string, v []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.fail != nil {
		return k.fail
	}
	k.m[key] = append([]byte(nil), v...)
	return nil
}

func (k *memKV) Delete(_ context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.fail != nil {
		return k.fail
	}
	for _, key := range keys {
		delete(k.m, key)
	}
	return nil
}

var _ domain.KV = (*memKV)(nil)

// collector gathers emitted events
type collector struct {
	mu     sync.Mutex
	events []domain.Event
}

func (c *collector) emit(e domain.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *collector) progress() []float64 {
	var out []float64
	for _, e := range c.events {
		if e.Type == domain.EventProgress {
			out = append(out, e.Progress)
		}
	}
	return out
}

func (c *collector) statuses() []string {
	var out []string
	for _, e := range c.events {
		if e.Type == domain.EventProgress {
			out = append(out, e.Status)
		}
	}
	return out
}

func (c *collector) last() domain.Event {
	if len(c.events) == 0 {
		return domain.Event{}
	}
	return c.events[len(c.events)-1]
}

func entries(ss ...string) []crm.Entry {
	out := make([]crm.Entry, len(ss))
	for i, s := range ss {
		out[i] = crm.NewEntry(crm.ID(s))
	}
	return out
}

func ids(ss ...string) []crm.ID {
	out := make([]crm.ID, len(ss))
	for i, s := range ss {
		out[i] = crm.ID(s)
	}
	return out
}
