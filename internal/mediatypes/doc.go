// Package mediatypes provides shared type definitions for the transform
// pipeline: media kinds, target format identifiers, per-kind geometry and
// file extension lookup.
//
// This package exists as a dependency-light foundation that can be imported
// by every other package without creating import cycles.
//
// # Media Kinds
//
//	mediatypes.KindAudio    // sample_rate, channels, bits_per_sample
//	mediatypes.KindImage    // width, height, channels
//	mediatypes.KindVideo    // width, height, frame_rate, duration
//	mediatypes.KindDocument // page_count
//
// # Geometry
//
// Geometry is carried alongside raw buffers and is never parsed out of
// buffer content. Each kind has its own Geometry implementation with a
// Validate method:
//
//	g := mediatypes.VideoGeometry{Width: 64, Height: 48, FrameRate: 25}
//	if err := g.Validate(); err != nil {
//	    // frame_rate must be positive, and so on
//	}
//
// # Extension Detection
//
// The CLI uses LookupExtension to infer kind and format from a file name:
//
//	ext := strings.ToLower(filepath.Ext(filename))
//	kind, format, ok := mediatypes.LookupExtension(ext)
package mediatypes
