// Package buffer provides fixed-capacity output buffers for the transform
// pipeline.
//
// A ByteBuffer has a capacity chosen when it is acquired and a length that
// grows as bytes are written. Writes that would pass the capacity fail with
// a pipeerr.KindCapacityExceeded error and leave the buffer untouched; the
// buffer never clamps a write to make it fit.
package buffer
