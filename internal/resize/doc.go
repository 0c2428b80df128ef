// Package resize scales raw pixel buffers with nearest-neighbour sampling.
//
// Image buffers are interleaved width*height*channels bytes with 1 to 4
// channels. Single, three and four channel buffers are wrapped as image.Image
// values and resized with github.com/disintegration/imaging; two channel
// (grey plus alpha) buffers are resampled directly.
//
// Video buffers are a sequence of RGB frames as described by
// mediatypes.VideoGeometry. Each frame is scaled with
// golang.org/x/image/draw into a reused destination frame.
//
// Input length must match the declared geometry exactly, and the resized
// result must fit the output buffer; neither case is clamped.
package resize
