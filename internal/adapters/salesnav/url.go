package salesnav

import (
	"net/url"
	"strconv"
	"strings"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
)

// DefaultBaseURL is the search api host
const DefaultBaseURL = "https://www.linkedin.com"

const (
	personPath       = "/sales-api/salesApiLeadSearch"
	organizationPath = "/sales-api/salesApiAccountSearch"

	personDecoration       = "com.linkedin.sales.deco.desktop.searchv2.LeadSearchResult-14"
	organizationDecoration = "com.linkedin.sales.deco.desktop.searchv2.AccountSearchResult-4"
)

// selector names recognized in a search page URL
const (
	pRecent  = "recentSearchId"
	pSaved   = "savedSearchId"
	pQuery   = "query"
	pSession = "sessionId"
)

// BuildPageURL turns a Sales Navigator page URL into the api URL for page (1-based)
// base defaults to DefaultBaseURL
func BuildPageURL(base, searchURL string, kind Kind, page int) (string, error) {
	if page < 1 {
		return "", perr.InvalidArgf("page must be >= 1, got %d", page)
	}
	u, err := url.Parse(strings.TrimSpace(searchURL))
	if err != nil || u.Host == "" {
		return "", perr.InvalidArgf("invalid search url %q", searchURL)
	}
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimRight(base, "/")

	params := orderedParams(u.RawQuery)
	start := strconv.Itoa((page - 1) * PageSize)
	session := params.get(pSession)

	var b queryBuilder
	selector := func(q, name, val string) {
		b.add("q", q)
		if name == pQuery {
			b.add(pQuery, val)
			b.add("start", start)
			b.add("count", strconv.Itoa(PageSize))
		} else {
			b.add("start", start)
			b.add("count", strconv.Itoa(PageSize))
			b.add(name, val)
		}
	}

	switch kind {
	case KindOrganization:
		switch {
		case params.get(pSaved) != "":
			selector(pSaved, pSaved, params.get(pSaved))
		case params.get(pQuery) != "":
			selector("searchQuery", pQuery, params.get(pQuery))
		case params.get(pRecent) != "":
			selector(pRecent, pRecent, params.get(pRecent))
		default:
			// list pages carry their own selector params, forwarded as is
			for _, kv := range params {
				switch kv.k {
				case pSession, pSaved, pQuery, pRecent:
					continue
				}
				b.addForm(kv.k, kv.v)
			}
			b.add("start", start)
			b.add("count", strconv.Itoa(PageSize))
		}
		if session != "" {
			b.add("trackingParam", "(sessionId:"+session+")")
		}
		b.add("decorationId", organizationDecoration)
		return base + organizationPath + "?" + b.String(), nil

	default:
		switch {
		case params.get(pRecent) != "":
			selector(pRecent, pRecent, params.get(pRecent))
		case params.get(pSaved) != "":
			selector(pSaved, pSaved, params.get(pSaved))
		case params.get(pQuery) != "":
			selector("searchQuery", pQuery, params.get(pQuery))
		default:
			return "", perr.InvalidArgf("search url has no recentSearchId, savedSearchId or query")
		}
		if session != "" {
			b.add("trackingParam", "(sessionId:"+session+")")
		}
		b.add("decorationId", personDecoration)
		return base + personPath + "?" + b.String(), nil
	}
}

// DetectKind classifies a Sales Navigator page; ok is false for pages that are not searches or lists
func DetectKind(pageURL string) (Kind, bool) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return "", false
	}
	p := u.Path
	switch {
	case strings.Contains(p, "/sales/search/people"):
		return KindPerson, true
	case strings.Contains(p, "/sales/search/company"):
		return KindOrganization, true
	}
	if !strings.Contains(p, "/sales/") {
		return "", false
	}
	if !strings.Contains(p, "/search/") && !strings.Contains(p, "/leads/") && !strings.Contains(p, "/accounts/") &&
		!strings.Contains(p, "/lists/") {
		return "", false
	}
	switch {
	case strings.Contains(p, "/people"), strings.Contains(p, "/leads"):
		return KindPerson, true
	case strings.Contains(p, "/company"), strings.Contains(p, "/accounts"):
		return KindOrganization, true
	default:
		return KindPerson, true
	}
}

type param struct{ k, v string }

type paramList []param

// orderedParams decodes a raw query keeping key order, which url.ParseQuery drops
func orderedParams(raw string) paramList {
	var out paramList
	for part := range strings.SplitSeq(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		dk, err := url.QueryUnescape(k)
		if err != nil {
			dk = k
		}
		dv, err := url.QueryUnescape(v)
		if err != nil {
			dv = v
		}
		out = append(out, param{dk, dv})
	}
	return out
}

func (pl paramList) get(k string) string {
	for _, p := range pl {
		if p.k == k {
			return p.v
		}
	}
	return ""
}

type queryBuilder struct{ sb strings.Builder }

// add writes a restli value: structure characters stay literal, the rest is escaped
func (b *queryBuilder) add(k, v string) { b.write(k, restliEscape(v)) }

// addForm writes a form encoded value
func (b *queryBuilder) addForm(k, v string) { b.write(url.QueryEscape(k), url.QueryEscape(v)) }

func (b *queryBuilder) write(k, v string) {
	if b.sb.Len() > 0 {
		b.sb.WriteByte('&')
	}
	b.sb.WriteString(k)
	b.sb.WriteByte('=')
	b.sb.WriteString(v)
}

func (b *queryBuilder) String() string { return b.sb.String() }

// restliEscape percent-encodes v except unreserved characters and the restli delimiters ( ) , :
func restliEscape(v string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			sb.WriteByte(c)
		case strings.IndexByte("-._~(),:!*'", c) >= 0:
			sb.WriteByte(c)
		default:
			sb.WriteByte('%')
			sb.WriteByte(hex[c>>4])
			sb.WriteByte(hex[c&15])
		}
	}
	return sb.String()
}
