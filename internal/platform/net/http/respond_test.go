package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "github.com/Highperformr/hp-sales-nav-plugin/internal/platform/errors"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestHandle_Success(t *testing.T) {
	h := Handle(func(*stdhttp.Request) Response {
		return Response{Status: stdhttp.StatusCreated, Body: map[string]int{"imported": 3}}
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", nil))

	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "Created" || env.Error != "" {
		t.Fatalf("envelope = %#v", env)
	}
}

func TestHandle_ErrorBody(t *testing.T) {
	h := Handle(func(*stdhttp.Request) Response {
		return Error(perr.WithField(perr.InvalidArgf("searchUrl is not a Sales Navigator URL"), "searchUrl"))
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", nil))

	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != perr.ErrorCodeInvalidArgument || env.Field != "searchUrl" {
		t.Fatalf("envelope = %#v", env)
	}
}

func TestHandle_NoContentAndHeaders(t *testing.T) {
	h := Handle(func(*stdhttp.Request) Response {
		r := NoContent()
		r.Header = stdhttp.Header{"X-Test": []string{"1"}}
		return r
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodDelete, "/", nil))

	if rec.Code != stdhttp.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Test") != "1" {
		t.Fatalf("header not copied")
	}
}

func TestJSONHandler(t *testing.T) {
	type in struct {
		Count int `json:"count" validate:"min=1"`
	}
	h := JSONHandler(func(_ *stdhttp.Request, v in) (any, error) {
		return map[string]int{"count": v.Count}, nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", jsonBody(`{"count":2}`)))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodPost, "/", jsonBody(`{"count":0}`)))
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("validation status = %d", rec.Code)
	}
}

func TestJSONHandlerNoBody_PassesResponse(t *testing.T) {
	h := JSONHandlerNoBody(func(*stdhttp.Request) (any, error) { return NoContent(), nil })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil))
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}
