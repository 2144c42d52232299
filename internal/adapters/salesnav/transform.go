package salesnav

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/core/normalize"
	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
)

const companyURNPrefix = "urn:li:fs_salesCompany:"

// Transformer reshapes raw search elements into records
// the zero value cleans text with normalize.Text and does not log
type Transformer struct {
	Clean func(string) string
	Log   *logger.Logger
}

// Elements transforms an already decoded page
func (t Transformer) Elements(kind Kind, raw RawPage) ([]Record, int) {
	if raw.Elements == nil {
		return []Record{}, 0
	}
	out := make([]Record, 0, len(raw.Elements))
	for i, el := range raw.Elements {
		rec, err := t.element(kind, el)
		if err != nil {
			t.warn(err, i, "search element dropped")
			continue
		}
		out = append(out, rec)
	}
	total := raw.Paging.Total
	if total == 0 {
		total = len(out)
	}
	return out, total
}

// element transforms one element; a panic while extracting becomes an error
func (t Transformer) element(kind Kind, el json.RawMessage) (rec Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	if b := bytes.TrimSpace(el); len(b) == 0 || b[0] != '{' {
		return nil, fmt.Errorf("element is not an object")
	}
	if kind == KindOrganization {
		return t.organization(el)
	}
	return t.person(el)
}

type personElement struct {
	EntityURN        string `json:"entityUrn"`
	FullName         string `json:"fullName"`
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	GeoRegion        string `json:"geoRegion"`
	CurrentPositions []struct {
		CompanyName string `json:"companyName"`
		Title       string `json:"title"`
	} `json:"currentPositions"`
}

func (t Transformer) person(el json.RawMessage) (Record, error) {
	var p personElement
	if err := json.Unmarshal(el, &p); err != nil {
		return nil, err
	}
	clean := t.clean()
	out := Person{
		LinkedinURL: ProfileURL(p.EntityURN),
		FullName:    clean(p.FullName),
		FirstName:   clean(p.FirstName),
		LastName:    clean(p.LastName),
		Location:    clean(p.GeoRegion),
	}
	if len(p.CurrentPositions) > 0 {
		out.CompanyName = clean(p.CurrentPositions[0].CompanyName)
		out.JobTitle = clean(p.CurrentPositions[0].Title)
	}
	return out, nil
}

type organizationElement struct {
	EntityURN   string `json:"entityUrn"`
	CompanyName string `json:"companyName"`
	Industry    string `json:"industry"`
}

func (t Transformer) organization(el json.RawMessage) (Record, error) {
	var o organizationElement
	if err := json.Unmarshal(el, &o); err != nil {
		return nil, err
	}
	clean := t.clean()
	return Organization{
		CompanyDetails: CompanyDetails{Name: clean(o.CompanyName), Industry: clean(o.Industry)},
		LinkedinURL:    CompanyURL(o.EntityURN),
	}, nil
}

// ProfileURL derives the public profile URL from a lead urn like urn:li:fs_salesProfile:(ACwAAA,NAME_SEARCH,abc)
func ProfileURL(urn string) string {
	_, rest, ok := strings.Cut(urn, "(")
	if !ok {
		return ""
	}
	vanity, _, _ := strings.Cut(rest, ",")
	if vanity == "" {
		return ""
	}
	return "https://www.linkedin.com/in/" + vanity
}

// CompanyURL derives the company path from an account urn
func CompanyURL(urn string) string {
	id := strings.ReplaceAll(urn, companyURNPrefix, "")
	if id == "" {
		return ""
	}
	return "linkedin.com/company/" + id
}

func (t Transformer) clean() func(string) string {
	if t.Clean != nil {
		return t.Clean
	}
	return normalize.Text
}

func (t Transformer) warn(err error, idx int, msg string) {
	if t.Log == nil {
		return
	}
	t.Log.Warn().Err(err).Int("index", idx).Msg(msg)
}
