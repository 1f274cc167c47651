package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/warband-face/internal/platform/errors"
	"github.com/louisbranch/warband-face/internal/platform/telemetry/metrics"
	"github.com/louisbranch/warband-face/internal/services/editor/storage/sqlite"
)

func serveRequest(t *testing.T, handler http.Handler, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(method, path, reader))
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return out
}

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "faces.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUpEndpoint(t *testing.T) {
	rr := serveRequest(t, NewHandler(HandlerOptions{}), http.MethodGet, routeUp, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
	}
	if strings.TrimSpace(rr.Body.String()) != "OK" {
		t.Fatalf("body = %q, want OK", rr.Body.String())
	}
}

func TestDecodeEndpoint(t *testing.T) {
	rr := serveRequest(t, NewHandler(HandlerOptions{}), http.MethodPost, routeDecode, `{"hex_code":"0x0000000000000007"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, body %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[decodeResponse](t, rr)
	if got.FaceCode != 7 {
		t.Fatalf("face_code = %s, want 0x0000000000000007", got.FaceCode)
	}
	if got.Parameters["morph_0"] != 7 || got.Parameters["hair_index"] != 0 {
		t.Fatalf("parameters = %v", got.Parameters)
	}
	if got.MorphWeights[0] != 1 || got.MorphWeights[1] != 0 {
		t.Fatalf("morph_weights = %v", got.MorphWeights)
	}
	if got.Layout != "v1" || got.MorphTargets[0] == "" {
		t.Fatalf("layout = %q targets = %v", got.Layout, got.MorphTargets)
	}
}

func TestDecodeEndpointRejectsBadCode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind string
	}{
		{name: "short", body: `{"hex_code":"0x12"}`, wantKind: "INVALID_FORMAT"},
		{name: "uppercase prefix", body: `{"hex_code":"0X0000000000000000"}`, wantKind: "INVALID_FORMAT"},
		{name: "padded", body: `{"hex_code":" 0x0000000000000000 "}`, wantKind: "INVALID_FORMAT"},
		{name: "not json", body: `hex`, wantKind: kindInvalidRequest},
		{name: "empty body", body: "", wantKind: kindInvalidRequest},
		{name: "unknown key", body: `{"code":"0x0000000000000000"}`, wantKind: kindInvalidRequest},
	}
	handler := NewHandler(HandlerOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveRequest(t, handler, http.MethodPost, routeDecode, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
			}
			if got := decodeBody[apiErrorEnvelope](t, rr); got.Error.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got.Error.Kind, tt.wantKind)
			}
		})
	}
}

func TestWriteDomainErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{name: "rejected value", err: apperrors.New(apperrors.CodeOutOfRange, "too big"), wantStatus: http.StatusBadRequest, wantKind: "OUT_OF_RANGE"},
		{name: "broken layout", err: apperrors.New(apperrors.CodeLayoutInvalid, "overlap"), wantStatus: http.StatusInternalServerError, wantKind: "LAYOUT_INVALID"},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantKind: "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeDomainError(rr, tt.err)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := decodeBody[apiErrorEnvelope](t, rr); got.Error.Kind != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got.Error.Kind, tt.wantKind)
			}
		})
	}
}

func TestEncodeEndpoint(t *testing.T) {
	body := `{"parameters":{"morph_0":5,"morph_1":0,"morph_2":0,"morph_3":0,"morph_4":0,"morph_5":0,"morph_6":0,"morph_7":0,` +
		`"hair_index":0,"beard_index":0,"age":0,"skin_tone":0,"reserved":0}}`
	rr := serveRequest(t, NewHandler(HandlerOptions{}), http.MethodPost, routeEncode, body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status code = %d, body %s", rr.Code, rr.Body.String())
	}
	if got := decodeBody[encodeResponse](t, rr); got.FaceCode != 5 {
		t.Fatalf("face_code = %s, want 0x0000000000000005", got.FaceCode)
	}
}

func TestEncodeEndpointErrors(t *testing.T) {
	handler := NewHandler(HandlerOptions{})

	rr := serveRequest(t, handler, http.MethodPost, routeEncode, `{"parameters":{"morph_0":9}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status code = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := decodeBody[apiErrorEnvelope](t, rr); got.Error.Kind != "FIELD_MISSING" {
		t.Fatalf("kind = %q, want FIELD_MISSING", got.Error.Kind)
	}

	rr = serveRequest(t, handler, http.MethodPost, routeEncode, `{}`)
	if got := decodeBody[apiErrorEnvelope](t, rr); got.Error.Kind != kindInvalidRequest {
		t.Fatalf("kind = %q, want %s", got.Error.Kind, kindInvalidRequest)
	}
}

func TestValidateEndpoint(t *testing.T) {
	handler := NewHandler(HandlerOptions{})
	tests := []struct {
		code  string
		valid bool
	}{
		{code: "0x0000000000000000", valid: true},
		{code: "0xABCDEF0123456789", valid: true},
		{code: "0x12", valid: false},
		{code: "00000000000000000x", valid: false},
		{code: "0x000000000000000g", valid: false},
		{code: "%200x0000000000000000", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := serveRequest(t, handler, http.MethodGet, "/api/v1/face/validate/"+tt.code, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status code = %d, want %d", rr.Code, http.StatusOK)
			}
			got := decodeBody[validateResponse](t, rr)
			if got.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v (%s)", got.Valid, tt.valid, got.Message)
			}
			if tt.valid && got.FaceCode != strings.ToLower(tt.code) {
				t.Fatalf("face_code = %q, want canonical form", got.FaceCode)
			}
		})
	}
}

func TestLayoutEndpoint(t *testing.T) {
	rr := serveRequest(t, NewHandler(HandlerOptions{}), http.MethodGet, routeLayout, "")
	got := decodeBody[layoutResponse](t, rr)
	if got.Version != "v1" || got.TotalBits != 64 {
		t.Fatalf("layout = %+v", got)
	}
	if len(got.Fields) != 13 {
		t.Fatalf("fields = %d, want 13", len(got.Fields))
	}
	last := got.Fields[len(got.Fields)-1]
	if last.Name != "reserved" || last.Offset != 48 || last.Width != 16 || last.Max != 65535 {
		t.Fatalf("reserved field = %+v", last)
	}
}

func TestCharacterLifecycle(t *testing.T) {
	handler := NewHandler(HandlerOptions{Faces: openTestStore(t)})

	rr := serveRequest(t, handler, http.MethodPut, "/api/v1/characters/Rolf/face", `{"face_code":"0x0000000000000fc7"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d, body %s", rr.Code, rr.Body.String())
	}
	saved := decodeBody[characterResponse](t, rr)
	if saved.Name != "Rolf" || saved.FaceCode != 0xfc7 || saved.Layout != "v1" {
		t.Fatalf("saved = %+v", saved)
	}
	if saved.Parameters["morph_0"] != 7 || saved.Parameters["morph_3"] != 7 {
		t.Fatalf("parameters = %v", saved.Parameters)
	}
	if _, err := time.Parse(time.RFC3339, saved.CreatedAt); err != nil {
		t.Fatalf("created_at = %q: %v", saved.CreatedAt, err)
	}

	rr = serveRequest(t, handler, http.MethodGet, "/api/v1/characters/Rolf/face", "")
	if got := decodeBody[characterResponse](t, rr); got.FaceCode != 0xfc7 {
		t.Fatalf("get = %+v", got)
	}

	rr = serveRequest(t, handler, http.MethodGet, routeCharacters+"?page_size=10", "")
	page := decodeBody[characterPageResponse](t, rr)
	if len(page.Characters) != 1 || page.NextPageToken != "" {
		t.Fatalf("page = %+v", page)
	}

	rr = serveRequest(t, handler, http.MethodDelete, "/api/v1/characters/Rolf/face", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	rr = serveRequest(t, handler, http.MethodGet, "/api/v1/characters/Rolf/face", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCharacterRejectsInvalidCode(t *testing.T) {
	handler := NewHandler(HandlerOptions{Faces: openTestStore(t)})
	rr := serveRequest(t, handler, http.MethodPut, "/api/v1/characters/Rolf/face", `{"face_code":"0xnothex000000000"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := decodeBody[apiErrorEnvelope](t, rr); got.Error.Kind != "INVALID_FORMAT" {
		t.Fatalf("kind = %q, want INVALID_FORMAT", got.Error.Kind)
	}
}

func TestCharacterRejectsPaddedCode(t *testing.T) {
	handler := NewHandler(HandlerOptions{Faces: openTestStore(t)})
	rr := serveRequest(t, handler, http.MethodPut, "/api/v1/characters/Rolf/face", `{"face_code":"0x0000000000000fc7 "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if got := decodeBody[apiErrorEnvelope](t, rr); got.Error.Kind != "INVALID_FORMAT" {
		t.Fatalf("kind = %q, want INVALID_FORMAT", got.Error.Kind)
	}
}

func TestCharacterRoutesRejectInvalidNames(t *testing.T) {
	handler := NewHandler(HandlerOptions{Faces: openTestStore(t)})
	names := map[string]string{
		"blank":    "%20",
		"too long": strings.Repeat("a", 65),
	}
	for label, name := range names {
		path := "/api/v1/characters/" + name + "/face"
		for _, method := range []string{http.MethodGet, http.MethodDelete, http.MethodPut} {
			t.Run(label+" "+method, func(t *testing.T) {
				body := ""
				if method == http.MethodPut {
					body = `{"face_code":"0x0000000000000000"}`
				}
				rr := serveRequest(t, handler, method, path, body)
				if rr.Code != http.StatusBadRequest {
					t.Fatalf("status = %d, want %d (body %s)", rr.Code, http.StatusBadRequest, rr.Body.String())
				}
				got := decodeBody[apiErrorEnvelope](t, rr)
				if got.Error.Kind != kindInvalidRequest || got.Error.Field != "name" {
					t.Fatalf("error = %+v, want %s on name", got.Error, kindInvalidRequest)
				}
			})
		}
	}
}

func TestCharacterListRejectsBadPageSize(t *testing.T) {
	handler := NewHandler(HandlerOptions{Faces: openTestStore(t)})
	rr := serveRequest(t, handler, http.MethodGet, routeCharacters+"?page_size=-1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCharactersWithoutStoreAreUnavailable(t *testing.T) {
	rr := serveRequest(t, NewHandler(HandlerOptions{}), http.MethodGet, "/api/v1/characters/Rolf/face", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}

func TestMetricsEndpointReportsSessions(t *testing.T) {
	editorMetrics := metrics.NewEditor()
	srv := newTestServer(t, HandlerOptions{
		Hub:     newTestHub(10*time.Millisecond, 0),
		Metrics: editorMetrics,
	})
	conn, _ := dialSession(t, srv)
	writeFrame(t, conn, map[string]any{"op": opSetField, "field": "age", "value": 3})
	readFrame(t, conn)
	readFrame(t, conn)

	resp, err := http.Get(srv.URL + routeMetrics)
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	for _, want := range []string{
		"warband_face_editor_sessions_active 1",
		"warband_face_editor_code_updates_total 1",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}
}
