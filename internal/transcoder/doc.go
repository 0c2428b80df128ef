// Package transcoder is the dispatch facade of the transform pipeline.
//
// A Request names a media kind, an operation and its input buffers. Invoke
// validates the request and its kind-specific geometry, then routes it:
//
//   - process: the registered codec strategy for (kind, format)
//   - compress: rate-controlled averaging (audio, video) or sampling
//   - merge: ordered concatenation, dropping PDF headers after the first item
//   - trim: seconds for audio, frames for video, bytes otherwise
//   - split: even partition, remainder in the last part
//   - resize: nearest-neighbour scaling of raw image or video frames
//   - extract_text: PDF text extraction
//
// Every operation is atomic: it either returns a complete Result or an
// error, never partial output. Errors keep their pipeerr kind through
// wrapping, so callers can classify them with errors.Is or pipeerr.KindOf.
//
// Invoke holds no state between calls and is safe for concurrent use.
// RunBatch executes independent requests on a bounded worker pool.
package transcoder
