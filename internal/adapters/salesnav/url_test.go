package salesnav

import (
	"strings"
	"testing"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
)

const leadDeco = "decorationId=com.linkedin.sales.deco.desktop.searchv2.LeadSearchResult-14"

func TestBuildPageURL_Person(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		search string
		page   int
		want   string
	}{
		{
			name:   "saved search first page",
			search: "https://www.linkedin.com/sales/search/people?savedSearchId=42&sessionId=7",
			page:   1,
			want: "https://www.linkedin.com/sales-api/salesApiLeadSearch?q=savedSearchId&start=0&count=25" +
				"&savedSearchId=42&trackingParam=(sessionId:7)&" + leadDeco,
		},
		{
			name:   "recent wins over saved",
			search: "https://www.linkedin.com/sales/search/people?savedSearchId=42&recentSearchId=9",
			page:   3,
			want: "https://www.linkedin.com/sales-api/salesApiLeadSearch?q=recentSearchId&start=50&count=25" +
				"&recentSearchId=9&" + leadDeco,
		},
		{
			name:   "query keeps restli structure",
			search: "https://www.linkedin.com/sales/search/people?query=(filters%3AList((type%3AREGION%2Cvalues%3AList((id%3A102%2Ctext%3ANew%20York)))))&sessionId=abc",
			page:   2,
			want: "https://www.linkedin.com/sales-api/salesApiLeadSearch?q=searchQuery" +
				"&query=(filters:List((type:REGION,values:List((id:102,text:New%20York)))))" +
				"&start=25&count=25&trackingParam=(sessionId:abc)&" + leadDeco,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildPageURL("", tc.search, KindPerson, tc.page)
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("url\n got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestBuildPageURL_PersonWithoutSelector(t *testing.T) {
	t.Parallel()

	_, err := BuildPageURL("", "https://www.linkedin.com/sales/search/people?sessionId=1", KindPerson, 1)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err=%v want invalid argument", err)
	}
}

func TestBuildPageURL_Organization(t *testing.T) {
	t.Parallel()

	got, err := BuildPageURL("", "https://www.linkedin.com/sales/search/company?query=(keywords%3Aacme)&recentSearchId=5", KindOrganization, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://www.linkedin.com/sales-api/salesApiAccountSearch?q=searchQuery&query=(keywords:acme)&start=0&count=25" +
		"&decorationId=com.linkedin.sales.deco.desktop.searchv2.AccountSearchResult-4"
	if got != want {
		t.Fatalf("url\n got %s\nwant %s", got, want)
	}
}

func TestBuildPageURL_OrganizationListFallback(t *testing.T) {
	t.Parallel()

	got, err := BuildPageURL("http://127.0.0.1:9999/", "https://www.linkedin.com/sales/lists/company/123?q=listSearch&listId=123&sortBy=NAME&sessionId=s1", KindOrganization, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := "http://127.0.0.1:9999/sales-api/salesApiAccountSearch?q=listSearch&listId=123&sortBy=NAME&start=25&count=25" +
		"&trackingParam=(sessionId:s1)&decorationId=com.linkedin.sales.deco.desktop.searchv2.AccountSearchResult-4"
	if got != want {
		t.Fatalf("url\n got %s\nwant %s", got, want)
	}
}

func TestBuildPageURL_BadInput(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		search string
		page   int
	}{
		{"not a url", 1},
		{"https://www.linkedin.com/sales/search/people?savedSearchId=1", 0},
	} {
		if _, err := BuildPageURL("", tc.search, KindPerson, tc.page); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Errorf("BuildPageURL(%q, %d) err=%v", tc.search, tc.page, err)
		}
	}
}

func TestDetectKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Kind
		wantOK bool
	}{
		{"https://www.linkedin.com/sales/search/people?savedSearchId=1", KindPerson, true},
		{"https://www.linkedin.com/sales/search/company?query=x", KindOrganization, true},
		{"https://www.linkedin.com/sales/lists/people/123", KindPerson, true},
		{"https://www.linkedin.com/sales/lists/company/123", KindOrganization, true},
		{"https://www.linkedin.com/sales/search/accounts/", KindOrganization, true},
		{"https://www.linkedin.com/sales/leads/123", KindPerson, true},
		{"https://www.linkedin.com/sales/search/", KindPerson, true},
		{"https://www.linkedin.com/feed/", "", false},
		{"https://www.linkedin.com/sales/home", "", false},
	}
	for _, tc := range tests {
		got, ok := DetectKind(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("DetectKind(%q)=(%q,%v) want (%q,%v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Kind{"person": KindPerson, " People ": KindPerson, "company": KindOrganization, "organization": KindOrganization} {
		if got, ok := ParseKind(in); !ok || got != want {
			t.Errorf("ParseKind(%q)=%q,%v", in, got, ok)
		}
	}
	if _, ok := ParseKind("robots"); ok {
		t.Error("unknown kind accepted")
	}
}

func TestRestliEscape(t *testing.T) {
	t.Parallel()

	got := restliEscape("a b&c=d#e(f:g,h)%")
	if got != "a%20b%26c%3Dd%23e(f:g,h)%25" {
		t.Fatalf("escape=%s", got)
	}
	if strings.Contains(restliEscape("é"), "é") {
		t.Fatal("non ascii must be escaped")
	}
}
