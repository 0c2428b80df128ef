// Command mediapipe runs pipeline transforms on local files and inspects
// the history ledger written by the server.
//
// Usage:
//
//	mediapipe <operation> [flags] <input>...
//	mediapipe history [-limit n] [-kind k] [-operation op] [-status s]
//	mediapipe stats
//
// Operations are process, compress, merge, trim, split, resize and
// extract_text. The media kind and format are inferred from the first
// input's extension unless -kind or -format is given:
//
//	mediapipe process -quality 40 -o small.jpg photo.jpg
//	mediapipe merge -o joined.mp3 a.mp3 b.mp3
//	mediapipe trim -sample-rate 44100 -channels 2 -bits-per-sample 16 \
//	        -start 1.5 -length 2 -o clip.wav song.wav
//	mediapipe split -parts 4 -o chunk movie.mp4
//	mediapipe extract_text report.pdf
//
// Output goes to -o, or to stdout when it is not a terminal. Split writes
// one file per part named <output>.part0, <output>.part1 and so on. Binary
// output is never written to a terminal.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//	LOG_LEVEL    - Log level (default: warn)
package main
