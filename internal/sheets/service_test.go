package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"google.golang.org/api/option"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"edit url", "https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", "1AbC-d_9", false},
		{"bare url", "https://docs.google.com/spreadsheets/d/xyz", "xyz", false},
		{"not a sheet", "https://example.com/doc/123", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractSpreadsheetID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractSpreadsheetID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("extractSpreadsheetID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{1: "A", 12: "L", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}
	for n, want := range tests {
		if got := columnLetter(n); got != want {
			t.Errorf("columnLetter(%d) = %q, want %q", n, got, want)
		}
	}
}

// fakeSheetsAPI answers the subset of the Sheets v4 REST API used by Service.
type fakeSheetsAPI struct {
	mu       sync.Mutex
	existing bool
	calls    []string
	bodies   map[string]string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	var call string
	var resp any
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		call, resp = "append", map[string]any{}
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		call = "batchUpdate"
		resp = map[string]any{"replies": []any{map[string]any{"addSheet": map[string]any{"properties": map[string]any{"sheetId": 7}}}}}
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		call, resp = "update", map[string]any{}
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		call, resp = "get", map[string]any{"values": []any{}}
	case r.Method == http.MethodGet:
		call = "spreadsheet"
		var sheets []any
		if f.existing {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": "OCR", "sheetId": 3}})
		}
		resp = map[string]any{"sheets": sheets}
	default:
		http.NotFound(w, r)
		return
	}

	f.calls = append(f.calls, call)
	if f.bodies == nil {
		f.bodies = map[string]string{}
	}
	f.bodies[call] += string(body)
	json.NewEncoder(w).Encode(resp)
}

func newTestService(t *testing.T, api *fakeSheetsAPI) *Service {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	s, err := newService(context.Background(), "https://docs.google.com/spreadsheets/d/abc/edit",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("newService() error = %v", err)
	}
	return s
}

func TestWriteRowsCreatesSheet(t *testing.T) {
	api := &fakeSheetsAPI{}
	s := newTestService(t, api)

	rows := [][]interface{}{{"tesseract", 1.2}, {"vision", 0.4}}
	if err := s.WriteRows(context.Background(), "OCR", []string{"Engine", "Duration"}, rows); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}

	want := []string{"spreadsheet", "batchUpdate", "get", "update", "batchUpdate", "append"}
	if strings.Join(api.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if !strings.Contains(api.bodies["update"], `"Engine"`) {
		t.Errorf("header row not written: %s", api.bodies["update"])
	}
	if !strings.Contains(api.bodies["batchUpdate"], `"bold":true`) {
		t.Errorf("header row not formatted: %s", api.bodies["batchUpdate"])
	}
	if !strings.Contains(api.bodies["append"], `"vision"`) {
		t.Errorf("rows not appended: %s", api.bodies["append"])
	}
}

func TestWriteRowsExistingSheet(t *testing.T) {
	api := &fakeSheetsAPI{existing: true}
	s := newTestService(t, api)

	if err := s.WriteRows(context.Background(), "OCR", []string{"Engine"}, nil); err != nil {
		t.Fatalf("WriteRows() error = %v", err)
	}

	want := []string{"spreadsheet", "get", "update", "batchUpdate"}
	if strings.Join(api.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
}

func TestWriteRowsRequiresHeaders(t *testing.T) {
	s := newTestService(t, &fakeSheetsAPI{})
	if err := s.WriteRows(context.Background(), "OCR", nil, nil); err == nil {
		t.Error("expected an error without headers")
	}
}

func TestReadRange(t *testing.T) {
	api := &fakeSheetsAPI{}
	s := newTestService(t, api)

	values, err := s.ReadRange(context.Background(), "OCR!A1:L10")
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want none", values)
	}
	if len(api.calls) != 1 || api.calls[0] != "get" {
		t.Errorf("calls = %v", api.calls)
	}
}
