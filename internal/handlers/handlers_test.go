package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"media-pipeline/internal/database"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/streaming"
	"media-pipeline/internal/transcoder"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
)

type fakeMemory struct {
	paused bool
}

func (f fakeMemory) IsPaused() bool { return f.paused }

func (f fakeMemory) Stats() (current, limit int64, usage float64) {
	return 50, 100, 0.5
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "pipeline.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/transform", h.Transform).Methods(http.MethodPost)
	r.HandleFunc("/api/transform/raw/{kind}/{op}", h.TransformRaw).Methods(http.MethodPost)
	r.HandleFunc("/api/batch", h.Batch).Methods(http.MethodPost)
	r.HandleFunc("/api/formats", h.GetFormats).Methods(http.MethodGet)
	r.HandleFunc("/api/history", h.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", h.GetStats).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	return r
}

func do(t *testing.T, handler http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestTransformMerge(t *testing.T) {
	db := newTestDB(t)
	h := New(transcoder.New(transcoder.Options{}), db, nil, Options{})
	router := newTestRouter(h)

	body := []byte(`{"kind":"audio","operation":"merge","inputs":["AQID","BAU="],"capacity":10}`)
	rec := do(t, router, http.MethodPost, "/api/transform", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[TransformResponse](t, rec)
	if diff := cmp.Diff([]byte{1, 2, 3, 4, 5}, resp.Output); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Header().Get("X-Pipeline-Output-Bytes"); got != "5" {
		t.Errorf("X-Pipeline-Output-Bytes = %q, want 5", got)
	}

	records, err := db.RecentTransforms(context.Background(), database.HistoryFilter{})
	if err != nil {
		t.Fatalf("RecentTransforms() error: %v", err)
	}
	if len(records) != 1 || records[0].Status != database.StatusSuccess || records[0].OutputBytes != 5 {
		t.Errorf("history = %+v, want one successful record of 5 bytes", records)
	}
}

func TestTransformErrors(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{}), nil, nil, Options{})
	router := newTestRouter(h)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind string
	}{
		{
			name:     "malformed json",
			body:     `{"kind":`,
			wantCode: http.StatusBadRequest,
			wantKind: "invalid_input",
		},
		{
			name:     "unknown kind",
			body:     `{"kind":"hologram","operation":"merge","inputs":["AQ=="]}`,
			wantCode: http.StatusBadRequest,
			wantKind: "invalid_input",
		},
		{
			name:     "quality out of range",
			body:     `{"kind":"audio","operation":"process","format":"mp3","quality":101,"inputs":["AQ=="]}`,
			wantCode: http.StatusBadRequest,
			wantKind: "invalid_quality",
		},
		{
			name:     "capacity exceeded",
			body:     `{"kind":"video","operation":"merge","geometry":{"width":1,"height":1,"frameRate":25},"inputs":["AQID","BAU="],"capacity":4}`,
			wantCode: http.StatusRequestEntityTooLarge,
			wantKind: "capacity_exceeded",
		},
		{
			name:     "unsupported format",
			body:     `{"kind":"audio","operation":"process","format":"flac","inputs":["AQID"]}`,
			wantCode: http.StatusUnsupportedMediaType,
			wantKind: "unsupported_format",
		},
		{
			name:     "invalid partition count",
			body:     `{"kind":"image","operation":"split","parts":0,"inputs":["AQID"]}`,
			wantCode: http.StatusUnprocessableEntity,
			wantKind: "invalid_partition_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/transform", []byte(tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			resp := decode[ErrorResponse](t, rec)
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
		})
	}
}

func TestTransformBodyTooLarge(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{MaxCapacity: 16}), nil, nil, Options{})
	router := newTestRouter(h)

	rec := do(t, router, http.MethodPost, "/api/transform/raw/audio/merge", make([]byte, 17))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestTransformRawProcess(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{}), nil, nil, Options{})
	router := newTestRouter(h)

	rec := do(t, router, http.MethodPost, "/api/transform/raw/audio/process?format=mp3&quality=50",
		[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if diff := cmp.Diff([]byte{0, 2, 4, 6, 8}, rec.Body.Bytes()); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", got)
	}
	if got := rec.Header().Get("X-Pipeline-Strategy"); got != "sample" {
		t.Errorf("X-Pipeline-Strategy = %q, want sample", got)
	}
}

func TestTransformRawSplit(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{}), nil, nil, Options{})
	router := newTestRouter(h)

	rec := do(t, router, http.MethodPost, "/api/transform/raw/image/split?parts=3",
		[]byte{0, 1, 2, 3, 4, 5, 6})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	mediaType, params, err := mime.ParseMediaType(rec.Header().Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("Content-Type = %q (%v), want multipart/mixed", rec.Header().Get("Content-Type"), err)
	}

	mr := multipart.NewReader(rec.Body, params["boundary"])
	var parts [][]byte
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("NextPart() error: %v", err)
		}
		data, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		parts = append(parts, data)
	}

	want := [][]byte{{0, 1}, {2, 3}, {4, 5, 6}}
	if diff := cmp.Diff(want, parts); diff != "" {
		t.Errorf("parts mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformRawRejectsNonPDF(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{}), nil, nil, Options{})
	router := newTestRouter(h)

	rec := do(t, router, http.MethodPost, "/api/transform/raw/document/extract_text", []byte("plain words"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
	if got := decode[ErrorResponse](t, rec).Kind; got != "invalid_input" {
		t.Errorf("kind = %q, want invalid_input", got)
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		name string
		md   transcoder.Metadata
		want string
	}{
		{name: "text", md: transcoder.Metadata{Operation: transcoder.OpExtractText}, want: "text/plain; charset=utf-8"},
		{name: "format", md: transcoder.Metadata{Operation: transcoder.OpProcess, Format: mediatypes.FormatPNG}, want: "image/png"},
		{name: "no format", md: transcoder.Metadata{Operation: transcoder.OpMerge}, want: "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentType(tt.md); got != tt.want {
				t.Errorf("contentType() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBatch(t *testing.T) {
	db := newTestDB(t)
	h := New(transcoder.New(transcoder.Options{}), db, fakeMemory{}, Options{Workers: 2})
	router := newTestRouter(h)

	body := []byte(`{"requests":[
		{"kind":"audio","operation":"merge","inputs":["AQ==","Ag=="]},
		{"kind":"nope","operation":"merge","inputs":["AQ=="]},
		{"kind":"video","operation":"merge","geometry":{"width":1,"height":1,"frameRate":25},"inputs":["AQID","BAU="],"capacity":4}
	]}`)
	rec := do(t, router, http.MethodPost, "/api/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	resp := decode[BatchResponse](t, rec)
	if resp.BatchID == "" || rec.Header().Get("X-Pipeline-Batch-Id") != resp.BatchID {
		t.Errorf("batch id = %q, header = %q", resp.BatchID, rec.Header().Get("X-Pipeline-Batch-Id"))
	}
	if resp.Succeeded != 1 || resp.Failed != 2 {
		t.Errorf("succeeded/failed = %d/%d, want 1/2", resp.Succeeded, resp.Failed)
	}

	gotStatus := make([]int, len(resp.Results))
	for i, item := range resp.Results {
		if item.Index != i {
			t.Errorf("results[%d].Index = %d", i, item.Index)
		}
		gotStatus[i] = item.Status
	}
	wantStatus := []int{http.StatusOK, http.StatusBadRequest, http.StatusRequestEntityTooLarge}
	if diff := cmp.Diff(wantStatus, gotStatus); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}

	records, err := db.RecentTransforms(context.Background(), database.HistoryFilter{})
	if err != nil {
		t.Fatalf("RecentTransforms() error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("history has %d records, want 3", len(records))
	}
	rejected, err := db.RecentTransforms(context.Background(), database.HistoryFilter{Kind: "nope"})
	if err != nil {
		t.Fatalf("RecentTransforms(kind=nope) error: %v", err)
	}
	if len(rejected) != 1 || rejected[0].Status != database.StatusError || rejected[0].ErrorKind != "invalid_input" {
		t.Errorf("rejected request record = %+v, want one invalid_input error", rejected)
	}
	for _, r := range records {
		if r.BatchID != resp.BatchID {
			t.Errorf("record batch id = %q, want %q", r.BatchID, resp.BatchID)
		}
	}
}

func TestBatchLimits(t *testing.T) {
	tests := []struct {
		name     string
		memory   MemoryStatus
		body     string
		wantCode int
	}{
		{
			name:     "paused",
			memory:   fakeMemory{paused: true},
			body:     `{"requests":[{"kind":"audio","operation":"merge","inputs":["AQ=="]}]}`,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:     "empty",
			memory:   fakeMemory{},
			body:     `{"requests":[]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "too many",
			memory:   fakeMemory{},
			body:     `{"requests":[{"kind":"audio","operation":"merge","inputs":["AQ=="]},{"kind":"audio","operation":"merge","inputs":["AQ=="]},{"kind":"audio","operation":"merge","inputs":["AQ=="]}]}`,
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(transcoder.New(transcoder.Options{}), nil, tt.memory, Options{MaxBatchSize: 2})
			rec := do(t, newTestRouter(h), http.MethodPost, "/api/batch", []byte(tt.body))
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestGetFormats(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{}), nil, nil, Options{})
	rec := do(t, newTestRouter(h), http.MethodGet, "/api/formats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	resp := decode[FormatsResponse](t, rec)
	if len(resp.Kinds) != 4 {
		t.Errorf("kinds = %d, want 4", len(resp.Kinds))
	}
	if diff := cmp.Diff(transcoder.Operations(), resp.Operations); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
	if len(resp.Registrations) == 0 {
		t.Error("expected codec registrations")
	}
}

func TestHistoryAndStats(t *testing.T) {
	db := newTestDB(t)
	h := New(transcoder.New(transcoder.Options{}), db, nil, Options{})
	router := newTestRouter(h)

	do(t, router, http.MethodPost, "/api/transform", []byte(`{"kind":"audio","operation":"merge","inputs":["AQ==","Ag=="]}`))
	do(t, router, http.MethodPost, "/api/transform", []byte(`{"kind":"video","operation":"merge","geometry":{"width":1,"height":1,"frameRate":25},"inputs":["AQID"],"capacity":1}`))

	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantCount int
	}{
		{name: "all", target: "/api/history", wantCode: http.StatusOK, wantCount: 2},
		{name: "by kind", target: "/api/history?kind=video", wantCode: http.StatusOK, wantCount: 1},
		{name: "by status", target: "/api/history?status=success", wantCode: http.StatusOK, wantCount: 1},
		{name: "limit", target: "/api/history?limit=1", wantCode: http.StatusOK, wantCount: 1},
		{name: "bad limit", target: "/api/history?limit=x", wantCode: http.StatusBadRequest},
		{name: "bad status", target: "/api/history?status=maybe", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.target, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := decode[HistoryResponse](t, rec).Count; got != tt.wantCount {
				t.Errorf("count = %d, want %d", got, tt.wantCount)
			}
		})
	}

	rec := do(t, router, http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	stats := decode[database.Stats](t, rec)
	if stats.TotalTransforms != 2 {
		t.Errorf("TotalTransforms = %d, want 2", stats.TotalTransforms)
	}
}

func TestHistoryDisabled(t *testing.T) {
	h := New(transcoder.New(transcoder.Options{}), nil, nil, Options{})
	router := newTestRouter(h)

	for _, target := range []string{"/api/history", "/api/stats"} {
		if rec := do(t, router, http.MethodGet, target, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", target, rec.Code)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	db := newTestDB(t)
	h := New(transcoder.New(transcoder.Options{}), db, fakeMemory{paused: true}, Options{})
	router := newTestRouter(h)

	rec := do(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	health := decode[HealthResponse](t, rec)
	if health.Status != statusDegraded || !health.History || health.Memory == nil || !health.Memory.Paused {
		t.Errorf("health = %+v, want degraded with paused memory", health)
	}

	if rec := do(t, router, http.MethodGet, "/livez", nil); rec.Code != http.StatusOK {
		t.Errorf("livez status = %d", rec.Code)
	}
	if rec := do(t, router, http.MethodHead, "/livez", nil); rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD livez status = %d, body length %d", rec.Code, rec.Body.Len())
	}
	if rec := do(t, router, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz status = %d", rec.Code)
	}

	_ = db.Close()
	if rec := do(t, router, http.MethodGet, "/readyz", nil); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz after close status = %d, want 503", rec.Code)
	}
}

func TestNewStreamDefaults(t *testing.T) {
	trans := transcoder.New(transcoder.Options{})

	h := New(trans, nil, nil, Options{})
	if diff := cmp.Diff(streaming.DefaultTimeoutWriterConfig().WriteTimeout, h.opts.Stream.WriteTimeout); diff != "" {
		t.Errorf("default WriteTimeout mismatch (-want +got):\n%s", diff)
	}
	if h.opts.Stream.ChunkSize != streaming.DefaultTimeoutWriterConfig().ChunkSize {
		t.Errorf("default ChunkSize = %d, want %d", h.opts.Stream.ChunkSize, streaming.DefaultTimeoutWriterConfig().ChunkSize)
	}

	var progress int
	custom := streaming.TimeoutWriterConfig{OnProgress: func(int64, time.Duration) { progress++ }}
	h = New(trans, nil, nil, Options{Stream: custom})
	if h.opts.Stream.OnProgress == nil || h.opts.Stream.WriteTimeout != 0 {
		t.Errorf("custom stream config replaced by defaults: %+v", h.opts.Stream)
	}
	h.opts.Stream.OnProgress(1, time.Millisecond)
	if progress != 1 {
		t.Errorf("OnProgress calls = %d, want 1", progress)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(MethodNotAllowed)
	r.HandleFunc("/api/transform", func(w http.ResponseWriter, _ *http.Request) {}).Methods(http.MethodPost)

	rec := do(t, r, http.MethodGet, "/api/transform", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	got := decode[ErrorResponse](t, rec)
	if diff := cmp.Diff(ErrorResponse{Error: "method GET not allowed"}, got); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformRecordsRejectedRequest(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(New(transcoder.New(transcoder.Options{}), db, nil, Options{}))

	rec := do(t, router, http.MethodPost, "/api/transform",
		[]byte(`{"kind":"audio","operation":"process","format":"mp3","quality":101,"inputs":["AQID"]}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	records, err := db.RecentTransforms(context.Background(), database.HistoryFilter{})
	if err != nil {
		t.Fatalf("RecentTransforms() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("history has %d records, want 1", len(records))
	}
	want := database.TransformRecord{
		Kind:       "audio",
		Operation:  "process",
		Format:     "mp3",
		Status:     database.StatusError,
		ErrorKind:  "invalid_quality",
		InputBytes: 3,
	}
	got := records[0]
	got.ID, got.Error, got.CreatedAt = 0, "", time.Time{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}
