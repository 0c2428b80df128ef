package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"media-pipeline/internal/database"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/metrics"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/streaming"
	"media-pipeline/internal/transcoder"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// jsonOverhead is added to the base64-expanded body limit of JSON calls.
const jsonOverhead = 1 << 20

// jsonBodyLimit returns the body size that can carry n payload bytes as
// base64 inside JSON.
func jsonBodyLimit(n int) int64 {
	return int64(n+2)/3*4 + jsonOverhead
}

// readBody reads at most limit bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, fmt.Errorf("request body exceeds %d bytes: %w", limit, err)
		}
		return nil, pipeerr.Wrap(pipeerr.KindInvalidInput, "handlers.readBody", err)
	}
	return body, nil
}

// Transform runs one JSON-encoded request.
func (h *Handlers) Transform(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, jsonBodyLimit(h.opts.MaxBufferBytes))
	if err != nil {
		writeTransformError(w, err)
		return
	}

	var tr TransformRequest
	if err := json.Unmarshal(body, &tr); err != nil {
		writeTransformError(w, pipeerr.Wrap(pipeerr.KindInvalidInput, "handlers.Transform", err))
		return
	}

	res, err := h.invoke(r.Context(), &tr, "")
	if err != nil {
		writeTransformError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	setMetadataHeaders(w.Header(), res.Metadata)
	writeJSON(w, toResponse(res))
}

// TransformRaw runs the request body as the single input of
// /api/transform/raw/{kind}/{op}. Parameters come from the query string.
// The output is streamed back; split responses are multipart/mixed.
func (h *Handlers) TransformRaw(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	body, err := readBody(w, r, int64(h.opts.MaxBufferBytes))
	if err != nil {
		writeTransformError(w, err)
		return
	}

	tr, err := requestFromQuery(vars["kind"], vars["op"], r.URL.Query(), body)
	if err != nil {
		writeTransformError(w, err)
		return
	}

	res, err := h.invoke(r.Context(), tr, "")
	if err != nil {
		writeTransformError(w, err)
		return
	}

	setMetadataHeaders(w.Header(), res.Metadata)
	if res.Metadata.Operation == transcoder.OpSplit {
		h.streamParts(w, r, res.Parts)
		return
	}

	w.Header().Set("Content-Type", contentType(res.Metadata))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Output)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := streaming.WriteChunked(r.Context(), w, res.Output, h.opts.Stream); err != nil {
		metrics.HTTPStreamErrors.WithLabelValues(streaming.Reason(err)).Inc()
		logging.Warn("Streaming %s result failed: %v", res.Metadata.Operation, err)
	}
}

func (h *Handlers) streamParts(w http.ResponseWriter, r *http.Request, parts [][]byte) {
	tw := streaming.NewTimeoutWriter(r.Context(), w, h.opts.Stream)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Warn("Failed to close timeout writer: %v", err)
		}
	}()

	mw := multipart.NewWriter(tw)
	w.Header().Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())
	w.WriteHeader(http.StatusOK)

	err := func() error {
		for i, part := range parts {
			pw, err := mw.CreatePart(textproto.MIMEHeader{
				"Content-Type":    {"application/octet-stream"},
				"Content-Length":  {strconv.Itoa(len(part))},
				"X-Pipeline-Part": {strconv.Itoa(i)},
			})
			if err != nil {
				return err
			}
			if _, err := pw.Write(part); err != nil {
				return err
			}
		}
		return mw.Close()
	}()
	if err != nil {
		metrics.HTTPStreamErrors.WithLabelValues(streaming.Reason(err)).Inc()
		logging.Warn("Streaming split parts failed: %v", err)
	}
}

// Batch runs up to MaxBatchSize JSON requests on the worker pool.
func (h *Handlers) Batch(w http.ResponseWriter, r *http.Request) {
	if h.memory != nil && h.memory.IsPaused() {
		w.Header().Set("Retry-After", "5")
		writeJSONError(w, "batch processing paused under memory pressure", http.StatusServiceUnavailable)
		return
	}

	body, err := readBody(w, r, jsonBodyLimit(h.opts.MaxBufferBytes))
	if err != nil {
		writeTransformError(w, err)
		return
	}

	var br BatchRequest
	if err := json.Unmarshal(body, &br); err != nil {
		writeTransformError(w, pipeerr.Wrap(pipeerr.KindInvalidInput, "handlers.Batch", err))
		return
	}
	if len(br.Requests) == 0 {
		writeJSONError(w, "batch contains no requests", http.StatusBadRequest)
		return
	}
	if len(br.Requests) > h.opts.MaxBatchSize {
		writeJSONError(w, fmt.Sprintf("batch of %d requests exceeds limit %d", len(br.Requests), h.opts.MaxBatchSize),
			http.StatusRequestEntityTooLarge)
		return
	}

	batchID := uuid.NewString()
	resp := BatchResponse{BatchID: batchID, Results: make([]BatchItem, len(br.Requests))}

	// Conversion errors are reported and recorded per item; only valid
	// requests run.
	reqs := make([]transcoder.Request, 0, len(br.Requests))
	positions := make([]int, 0, len(br.Requests))
	records := make([]*database.TransformRecord, 0, len(br.Requests))
	for i := range br.Requests {
		req, err := br.Requests[i].toRequest(h.opts.MaxBufferBytes)
		if err != nil {
			resp.Results[i] = errorItem(i, err)
			records = append(records, rejectedRecord(&br.Requests[i], err, batchID))
			continue
		}
		reqs = append(reqs, req)
		positions = append(positions, i)
	}

	numWorkers := h.opts.Workers
	if br.Workers > 0 && (numWorkers <= 0 || br.Workers < numWorkers) {
		numWorkers = br.Workers
	}

	results := h.transcoder.RunBatch(r.Context(), reqs, numWorkers)

	for j, br := range results {
		i := positions[j]
		records = append(records, newRecord(&reqs[j], br.Result, br.Err, batchID))
		if br.Err != nil {
			resp.Results[i] = errorItem(i, br.Err)
			continue
		}
		resp.Results[i] = BatchItem{Index: i, Result: toResponse(br.Result), Status: http.StatusOK}
	}
	for _, item := range resp.Results {
		if item.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	h.recordHistory(r.Context(), records...)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Pipeline-Batch-Id", batchID)
	writeJSON(w, resp)
}

func errorItem(i int, err error) BatchItem {
	item := BatchItem{Index: i, Status: statusForError(err), Error: &ErrorResponse{Error: err.Error()}}
	if kind := pipeerr.KindOf(err); kind != pipeerr.KindUnknown {
		item.Error.Kind = kind.String()
	}
	return item
}

// invoke converts, runs and records one request.
func (h *Handlers) invoke(ctx context.Context, tr *TransformRequest, batchID string) (*transcoder.Result, error) {
	req, err := tr.toRequest(h.opts.MaxBufferBytes)
	if err != nil {
		h.recordHistory(ctx, rejectedRecord(tr, err, batchID))
		return nil, err
	}
	res, err := h.transcoder.Invoke(req)
	h.recordHistory(ctx, newRecord(&req, res, err, batchID))
	return res, err
}

func newRecord(req *transcoder.Request, res *transcoder.Result, err error, batchID string) *database.TransformRecord {
	rec := &database.TransformRecord{
		Kind:       string(req.Kind),
		Operation:  string(req.Operation),
		Format:     string(req.Format),
		InputBytes: int64(req.TotalInputBytes()),
		BatchID:    batchID,
		Status:     database.StatusSuccess,
	}
	if err != nil {
		rec.Status = database.StatusError
		rec.ErrorKind = pipeerr.KindOf(err).String()
		rec.Error = err.Error()
		return rec
	}
	rec.Strategy = res.Metadata.Strategy
	rec.OutputBytes = int64(res.Metadata.OutputBytes)
	rec.DurationMs = float64(res.Metadata.Duration) / float64(time.Millisecond)
	return rec
}

// rejectedRecord describes a request that failed conversion, using the
// fields as the client sent them.
func rejectedRecord(tr *TransformRequest, err error, batchID string) *database.TransformRecord {
	var inputBytes int64
	for _, in := range tr.Inputs {
		inputBytes += int64(len(in))
	}
	return &database.TransformRecord{
		Kind:       tr.Kind,
		Operation:  tr.Operation,
		Format:     tr.Format,
		InputBytes: inputBytes,
		BatchID:    batchID,
		Status:     database.StatusError,
		ErrorKind:  pipeerr.KindOf(err).String(),
		Error:      err.Error(),
	}
}

// recordHistory stores records when the ledger is enabled. Failures are
// logged and never change the response.
func (h *Handlers) recordHistory(ctx context.Context, recs ...*database.TransformRecord) {
	if h.db == nil || len(recs) == 0 {
		return
	}
	// The ledger write outlives a disconnected client.
	ctx = context.WithoutCancel(ctx)
	var err error
	if len(recs) == 1 {
		err = h.db.RecordTransform(ctx, recs[0])
	} else {
		err = h.db.RecordTransforms(ctx, recs)
	}
	if err != nil {
		logging.Warn("Failed to record %d transform(s) in history: %v", len(recs), err)
	}
}

// contentType picks the raw response type from the result.
func contentType(md transcoder.Metadata) string {
	if md.Operation == transcoder.OpExtractText || md.Format == mediatypes.FormatTXT {
		return "text/plain; charset=utf-8"
	}
	if md.Format != "" {
		return mediatypes.MimeType(md.Format)
	}
	return "application/octet-stream"
}

func setMetadataHeaders(h http.Header, md transcoder.Metadata) {
	h.Set("X-Pipeline-Kind", string(md.Kind))
	h.Set("X-Pipeline-Operation", string(md.Operation))
	if md.Format != "" {
		h.Set("X-Pipeline-Format", string(md.Format))
	}
	if md.Strategy != "" {
		h.Set("X-Pipeline-Strategy", md.Strategy)
	}
	if md.Mode != "" {
		h.Set("X-Pipeline-Mode", md.Mode)
	}
	if md.TargetSize > 0 {
		h.Set("X-Pipeline-Target-Size", strconv.Itoa(md.TargetSize))
	}
	if md.Parts > 0 {
		h.Set("X-Pipeline-Parts", strconv.Itoa(md.Parts))
	}
	h.Set("X-Pipeline-Input-Bytes", strconv.Itoa(md.InputBytes))
	h.Set("X-Pipeline-Output-Bytes", strconv.Itoa(md.OutputBytes))
	h.Set("X-Pipeline-Duration-Ms", strconv.FormatFloat(float64(md.Duration)/float64(time.Millisecond), 'f', 3, 64))
}
