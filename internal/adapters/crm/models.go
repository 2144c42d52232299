package crm

import (
	"bytes"
	"encoding/json"
)

// ID is a CRM identifier; the api returns some ids as numbers and some as strings
type ID string

// UnmarshalJSON accepts a JSON string or number
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Entry is one element of a segment id list; an entry read from the CRM
// writes back the exact JSON token it arrived as
type Entry struct {
	ID  ID
	raw string
}

// NewEntry wraps an id created on this side; it encodes as a JSON string
func NewEntry(id ID) Entry { return Entry{ID: id} }

// UnmarshalJSON keeps the token and decodes the id the way ID does
func (e *Entry) UnmarshalJSON(b []byte) error {
	if err := e.ID.UnmarshalJSON(b); err != nil {
		return err
	}
	e.raw = string(bytes.TrimSpace(b))
	return nil
}

// MarshalJSON emits the original token when there is one
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.raw != "" {
		return []byte(e.raw), nil
	}
	return json.Marshal(string(e.ID))
}

// FieldMapping maps one source column onto a CRM field
type FieldMapping struct {
	SourceFieldName string `json:"sourceFieldName"`
	HPFieldName     string `json:"hpFieldName"`
}

// SourceSpec describes a webhook import source
type SourceSpec struct {
	Text         string
	FieldMapping []FieldMapping
}

// Segment is the part of a segment the import rewrites
type Segment struct {
	ID              ID
	Name            string
	ConditionValues []Entry
	Sources         []Entry
}

// SegmentSummary is one entry of the segment picker
type SegmentSummary struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Workspace is one CRM account the session can act on
type Workspace struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Session is the outcome of a session probe
type Session struct {
	Authenticated bool            `json:"authenticated"`
	Status        int             `json:"status"`
	AccountID     string          `json:"accountId,omitempty"`
	Workspaces    []Workspace     `json:"workspaces,omitempty"`
	User          json.RawMessage `json:"user,omitempty"`
}

type sourceMeta struct {
	Text   string `json:"text"`
	Config struct {
		FieldMapping []FieldMapping `json:"fieldMapping"`
	} `json:"config"`
}

type sourceItem struct {
	SourceType string     `json:"sourceType"`
	SourceMeta sourceMeta `json:"sourceMeta"`
}

type createSourceRequest struct {
	Sources []sourceItem `json:"sources"`
}

type createSourceResponse struct {
	Data []struct {
		ID ID `json:"id"`
	} `json:"data"`
}

type addContactsRequest struct {
	ContactsData any `json:"contactsData"`
}

type segmentCondition struct {
	Field    string  `json:"field"`
	Value    []Entry `json:"value"`
	Operator string  `json:"operator"`
}

type patchSegmentRequest struct {
	Condition      segmentCondition `json:"condition"`
	SegmentSources []Entry          `json:"segmentSources"`
}

type segmentResponse struct {
	Data struct {
		ID         ID `json:"id"`
		Attributes struct {
			Name      string `json:"name"`
			Condition struct {
				Value []Entry `json:"value"`
			} `json:"condition"`
			SegmentSources []Entry `json:"segmentSources"`
		} `json:"attributes"`
	} `json:"data"`
}

type filterSegmentsRequest struct {
	Limit int `json:"limit"`
}

type filterSegmentsResponse struct {
	Data []struct {
		ID         ID     `json:"id"`
		Name       string `json:"name"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

type sessionResponse struct {
	ID        json.RawMessage `json:"id"`
	AccountID json.RawMessage `json:"accountId"`
	Data      struct {
		Attributes struct {
			Accounts []Workspace `json:"accounts"`
		} `json:"attributes"`
	} `json:"data"`
}

// rawString renders a JSON scalar as text, empty for null or absent
func rawString(b json.RawMessage) string {
	var id ID
	if len(b) == 0 || json.Unmarshal(b, &id) != nil {
		return ""
	}
	return string(id)
}
