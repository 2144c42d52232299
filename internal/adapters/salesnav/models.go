package salesnav

import (
	"encoding/json"
	"strings"
)

// Kind selects which search endpoint and record shape a run uses
type Kind string

const (
	// KindPerson is a lead (people) search
	KindPerson Kind = "person"
	// KindOrganization is an account (company) search
	KindOrganization Kind = "organization"
)

// PageSize is fixed by the search api
const PageSize = 25

// Limits caps a run per kind
type Limits struct {
	MaxPages   int
	MaxRecords int
}

// Limits returns the page and record caps for k
func (k Kind) Limits() Limits {
	if k == KindOrganization {
		return Limits{MaxPages: 40, MaxRecords: 1000}
	}
	return Limits{MaxPages: 80, MaxRecords: 2000}
}

// Label is the word used in source names and logs
func (k Kind) Label() string {
	if k == KindOrganization {
		return "company"
	}
	return "people"
}

// ParseKind accepts the api spellings; empty means unknown
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "person", "people", "lead", "leads":
		return KindPerson, true
	case "organization", "organisation", "company", "companies", "account", "accounts":
		return KindOrganization, true
	default:
		return "", false
	}
}

// RawPage is one search api response
type RawPage struct {
	Elements []json.RawMessage `json:"elements"`
	Paging   struct {
		Total int `json:"total"`
	} `json:"paging"`
}

// Record is a normalized search result
type Record interface {
	Kind() Kind
}

// Person is the CRM row for a lead; json keys match the source field mapping
type Person struct {
	LinkedinURL string `json:"Linkedin"`
	FullName    string `json:"FullName"`
	FirstName   string `json:"FirstName"`
	LastName    string `json:"LastName"`
	CompanyName string `json:"CompanyName"`
	JobTitle    string `json:"JobTitle"`
	Location    string `json:"Location"`
}

// Kind implements Record
func (Person) Kind() Kind { return KindPerson }

// CompanyDetails is nested under contactRecord for organizations
type CompanyDetails struct {
	Name     string `json:"companyName"`
	Industry string `json:"industry"`
}

// Organization is the CRM row for an account
type Organization struct {
	CompanyDetails CompanyDetails `json:"contactRecord"`
	LinkedinURL    string         `json:"CompanyLinkedin"`
}

// Kind implements Record
func (Organization) Kind() Kind { return KindOrganization }

// FieldMapping is one source-to-CRM column mapping
type FieldMapping struct {
	SourceFieldName string `json:"sourceFieldName"`
	HPFieldName     string `json:"hpFieldName"`
}

// FieldMappings returns the CRM mapping for records of kind k
func (k Kind) FieldMappings() []FieldMapping {
	if k == KindOrganization {
		return []FieldMapping{
			{SourceFieldName: "contactRecord", HPFieldName: "contact.contactRecord"},
			{SourceFieldName: "CompanyLinkedin", HPFieldName: "company.companyLinkedin"},
		}
	}
	return []FieldMapping{
		{SourceFieldName: "Linkedin", HPFieldName: "contact.linkedIn"},
		{SourceFieldName: "FullName", HPFieldName: "contact.fullName"},
		{SourceFieldName: "FirstName", HPFieldName: "contact.firstName"},
		{SourceFieldName: "LastName", HPFieldName: "contact.lastName"},
		{SourceFieldName: "JobTitle", HPFieldName: "contact.title"},
		{SourceFieldName: "Country", HPFieldName: "contact.country"},
		{SourceFieldName: "State", HPFieldName: "contact.state"},
		{SourceFieldName: "City", HPFieldName: "contact.city"},
		{SourceFieldName: "contactRecord", HPFieldName: "contact.contactRecord"},
	}
}
