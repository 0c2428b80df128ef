// Package codec maps (media kind, format) pairs to transform strategies.
//
// A Strategy turns one source buffer into one output buffer. The default
// strategies are rate controlled: the quality parameter and input size give
// a target size (see package ratecontrol) and a segment mode produces the
// output (see package segment). Real codecs can be plugged in by
// registering a different Strategy for the same key.
//
// # Default Registrations
//
//	audio/mp3   sample
//	audio/wav   passthrough
//	audio/aac   average
//	image/jpeg  scale(q/100)
//	image/png   passthrough
//	image/webp  scale((q+20)/120)
//	video/mp4   sample (also mov, mkv)
//	video/avi   average
//	document/pdf sample
//	document/txt PDF text extraction
//
// None of these produce standards-conforming files. They model a byte
// budget, not a codec.
package codec
