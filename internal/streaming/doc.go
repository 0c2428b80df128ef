/*
Package streaming writes transform results to HTTP clients in bounded chunks.

Each chunk is written under a per-write deadline set through
http.ResponseController, and the request context is checked between chunks,
so a stalled or disconnected client releases its handler promptly instead of
pinning a result buffer.

	tw := streaming.NewTimeoutWriter(r.Context(), w, streaming.DefaultTimeoutWriterConfig())
	_, err := tw.Write(result.Output)
	if errors.Is(err, streaming.ErrClientGone) {
		return
	}

[WriteChunked] wraps the common single-buffer case.

# Error Handling

	var (
		ErrWriteTimeout   = errors.New("write timeout exceeded")
		ErrClientGone     = errors.New("client disconnected")
		ErrStreamCanceled = errors.New("stream canceled")
	)

[Reason] maps these to the reason label of metrics.HTTPStreamErrors.
*/
package streaming
