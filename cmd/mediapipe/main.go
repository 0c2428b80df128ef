package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-pipeline/internal/database"
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/ratecontrol"
	"media-pipeline/internal/resize"
	"media-pipeline/internal/startup"
	"media-pipeline/internal/transcoder"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// stdoutIsTerminal reports whether stdout is a terminal. Tests replace it.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	// Keep stderr quiet unless a level was asked for.
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "" {
		logging.SetLevel(logging.LevelWarn)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return exitUsage
	}

	command := args[0]
	switch command {
	case "history":
		return runHistory(args[1:], stdout, stderr)
	case "stats":
		return runStats(args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
		return exitOK
	}

	op, err := transcoder.ParseOperation(command)
	if err != nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(stderr)
		return exitUsage
	}
	return runTransform(op, args[1:], stdout, stderr)
}

// sanitizeCommand replaces everything outside [a-zA-Z0-9_-] with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Media Pipeline")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: mediapipe <operation> [flags] <input>...")
	fmt.Fprintln(w, "       mediapipe history [-limit n] [-kind k] [-operation op] [-status s]")
	fmt.Fprintln(w, "       mediapipe stats")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Operations:")
	for _, op := range transcoder.Operations() {
		fmt.Fprintf(w, "  %s\n", op)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'mediapipe <operation> -h' for the operation flags.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  DATABASE_DIR - Path to database directory (default: %s)\n", startup.DefaultDatabaseDir)
}

// transformFlags holds the parsed flags of a transform command.
type transformFlags struct {
	kind     string
	format   string
	quality  int
	capacity int
	output   string

	start  float64
	length float64
	parts  int

	targetWidth  int
	targetHeight int

	sampleRate     int
	channels       int
	bitsPerSample  int
	width          int
	height         int
	frameRate      int
	durationFrames int
	pageCount      int
}

func newTransformFlagSet(op transcoder.Operation, f *transformFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(string(op), flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.kind, "kind", "", "media kind (audio, image, video, document); inferred from the first input's extension")
	fs.StringVar(&f.format, "format", "", "target format; inferred from the first input's extension")
	fs.IntVar(&f.quality, "quality", int(ratecontrol.DefaultQuality), "quality 0-100")
	fs.IntVar(&f.capacity, "capacity", 0, "output bound in bytes (0 uses the maximum)")
	fs.StringVar(&f.output, "o", "", "output file (default stdout)")

	fs.Float64Var(&f.start, "start", 0, "trim start (seconds for audio, frames for video, bytes otherwise)")
	fs.Float64Var(&f.length, "length", 0, "trim length in the same unit as -start")
	fs.IntVar(&f.parts, "parts", 0, "number of split parts")

	fs.IntVar(&f.targetWidth, "target-width", 0, "resize target width")
	fs.IntVar(&f.targetHeight, "target-height", 0, "resize target height")

	fs.IntVar(&f.sampleRate, "sample-rate", 0, "audio sample rate")
	fs.IntVar(&f.channels, "channels", 0, "audio or image channels")
	fs.IntVar(&f.bitsPerSample, "bits-per-sample", 0, "audio bits per sample")
	fs.IntVar(&f.width, "width", 0, "image or video width")
	fs.IntVar(&f.height, "height", 0, "image or video height")
	fs.IntVar(&f.frameRate, "frame-rate", 0, "video frame rate")
	fs.IntVar(&f.durationFrames, "duration-frames", 0, "video length in frames")
	fs.IntVar(&f.pageCount, "page-count", 0, "document page count")
	return fs
}

func (f *transformFlags) geometry(kind mediatypes.MediaKind) mediatypes.Geometry {
	switch kind {
	case mediatypes.KindAudio:
		g := mediatypes.AudioGeometry{SampleRate: f.sampleRate, Channels: f.channels, BitsPerSample: f.bitsPerSample}
		if g != (mediatypes.AudioGeometry{}) {
			return g
		}
	case mediatypes.KindImage:
		g := mediatypes.ImageGeometry{Width: f.width, Height: f.height, Channels: f.channels}
		if g != (mediatypes.ImageGeometry{}) {
			return g
		}
	case mediatypes.KindVideo:
		g := mediatypes.VideoGeometry{Width: f.width, Height: f.height, FrameRate: f.frameRate, DurationFrames: f.durationFrames}
		if g != (mediatypes.VideoGeometry{}) {
			return g
		}
	case mediatypes.KindDocument:
		if f.pageCount != 0 {
			return mediatypes.DocumentGeometry{PageCount: f.pageCount}
		}
	}
	return nil
}

// errReadInput marks buildRequest failures caused by I/O rather than usage.
var errReadInput = errors.New("reading input")

// buildRequest assembles the request from flags and input files.
func buildRequest(op transcoder.Operation, f *transformFlags, paths []string) (transcoder.Request, error) {
	if len(paths) == 0 {
		return transcoder.Request{}, errors.New("no input files")
	}

	extKind, extFormat, known := mediatypes.LookupExtension(strings.ToLower(filepath.Ext(paths[0])))

	var kind mediatypes.MediaKind
	switch {
	case f.kind != "":
		k, err := mediatypes.ParseKind(f.kind)
		if err != nil {
			return transcoder.Request{}, err
		}
		kind = k
	case known:
		kind = extKind
	default:
		return transcoder.Request{}, fmt.Errorf("cannot infer media kind of %s; use -kind", filepath.Base(paths[0]))
	}

	format := mediatypes.ParseFormat(f.format)
	if f.format == "" && known && extKind == kind {
		format = extFormat
	}

	quality, err := ratecontrol.ParseQuality(f.quality)
	if err != nil {
		return transcoder.Request{}, err
	}

	inputs := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := filesystem.ReadFile(p, filesystem.DefaultRetryConfig())
		if err != nil {
			return transcoder.Request{}, fmt.Errorf("%w %s: %w", errReadInput, p, err)
		}
		inputs = append(inputs, data)
	}

	return transcoder.Request{
		Kind:      kind,
		Operation: op,
		Inputs:    inputs,
		Geometry:  f.geometry(kind),
		Quality:   quality,
		Format:    format,
		Capacity:  f.capacity,
		Trim:      transcoder.TrimRange{Start: f.start, Length: f.length},
		Parts:     f.parts,
		Resize:    resize.Size{Width: f.targetWidth, Height: f.targetHeight},
	}, nil
}

func runTransform(op transcoder.Operation, args []string, stdout, stderr io.Writer) int {
	var f transformFlags
	fs := newTransformFlagSet(op, &f, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	req, err := buildRequest(op, &f, fs.Args())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, errReadInput) {
			return exitError
		}
		return exitUsage
	}

	binary := op != transcoder.OpExtractText && req.Format != mediatypes.FormatTXT
	if f.output == "" && binary && stdoutIsTerminal() {
		fmt.Fprintln(stderr, "Error: refusing to write binary output to a terminal; use -o or redirect stdout")
		return exitUsage
	}
	if op == transcoder.OpSplit && f.output == "" {
		fmt.Fprintln(stderr, "Error: split needs -o; parts are written to <output>.partN")
		return exitUsage
	}

	res, err := transcoder.New(transcoder.Options{}).Invoke(req)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if kind := pipeerr.KindOf(err); kind != pipeerr.KindUnknown {
			fmt.Fprintf(stderr, "Kind: %s\n", kind)
		}
		return exitError
	}

	if err := writeResult(res, f.output, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	md := res.Metadata
	fmt.Fprintf(stderr, "%s %s: %d -> %d bytes in %v\n", md.Kind, md.Operation, md.InputBytes, md.OutputBytes, md.Duration.Round(time.Microsecond))
	return exitOK
}

// writeResult writes the output to path or stdout. Split parts go to
// path.part0, path.part1 and so on.
func writeResult(res *transcoder.Result, path string, stdout io.Writer) error {
	if res.Metadata.Operation == transcoder.OpSplit {
		for i, part := range res.Parts {
			name := fmt.Sprintf("%s.part%d", path, i)
			if err := filesystem.WriteFile(name, part, 0o644, filesystem.DefaultRetryConfig()); err != nil {
				return fmt.Errorf("writing part %d: %w", i, err)
			}
		}
		return nil
	}
	if path == "" {
		_, err := stdout.Write(res.Output)
		return err
	}
	return filesystem.WriteFile(path, res.Output, 0o644, filesystem.DefaultRetryConfig())
}

func openDatabase(stderr io.Writer) (*database.Database, func(), bool) {
	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = startup.DefaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, startup.DatabaseFileName)

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: Failed to connect to database: %v\n", err)
		fmt.Fprintf(stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		return nil, nil, false
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return db, closeDB, true
}

func runHistory(args []string, stdout, stderr io.Writer) int {
	var filter database.HistoryFilter
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&filter.Limit, "limit", database.DefaultHistoryLimit, "maximum records")
	fs.StringVar(&filter.Kind, "kind", "", "only this media kind")
	fs.StringVar(&filter.Operation, "operation", "", "only this operation")
	fs.StringVar(&filter.Status, "status", "", "only success or error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	db, closeDB, ok := openDatabase(stderr)
	if !ok {
		return exitError
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	records, err := db.RecentTransforms(ctx, filter)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	printHistory(stdout, records)
	return exitOK
}

func printHistory(w io.Writer, records []database.TransformRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No transforms recorded")
		return
	}
	for _, r := range records {
		line := fmt.Sprintf("%s  %-8s %-12s %-7s %8d -> %-8d %8.2fms",
			r.CreatedAt.Format(time.RFC3339), r.Kind, r.Operation, r.Status, r.InputBytes, r.OutputBytes, r.DurationMs)
		if r.ErrorKind != "" {
			line += "  " + r.ErrorKind
		}
		fmt.Fprintln(w, line)
	}
}

func runStats(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, "Error: stats takes no arguments")
		return exitUsage
	}

	db, closeDB, ok := openDatabase(stderr)
	if !ok {
		return exitError
	}
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	stats, err := db.GetStats(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	printStats(stdout, stats)
	return exitOK
}

func printStats(w io.Writer, stats database.Stats) {
	fmt.Fprintf(w, "Transforms:   %d\n", stats.TotalTransforms)
	fmt.Fprintf(w, "Input bytes:  %d\n", stats.InputBytes)
	fmt.Fprintf(w, "Output bytes: %d\n", stats.OutputBytes)
	for _, kind := range mediatypes.Kinds() {
		ks, ok := stats.ByKind[string(kind)]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "  %-8s success=%d error=%d\n", kind, ks.Success, ks.Error)
	}
}
