// Package imageintake turns a user-chosen image file into a compact
// embedded avatar (a base64 data URI), resampling large pictures first,
// or rejects it with a message fit to show next to the form field.
package imageintake

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"

	// Decoders registered for image.Decode.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// Limits applied by a default Processor.
const (
	MaxFileSize        = 10 << 20
	ResampleThreshold  = 2 << 20
	MaxDimension       = 800
	JPEGQuality        = 70
	MaxEncodedLen      = 1_000_000
	resampledMediaType = "image/jpeg"
)

// AllowedTypes are the declared media types accepted for upload.
var AllowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}

// Phase is a progress step reported while a file is processed.
type Phase string

const (
	PhaseProcessing  Phase = "processing"
	PhaseCompressing Phase = "compressing"
	PhaseEncoding    Phase = "encoding"
)

// String is the progress text shown to the user.
func (p Phase) String() string {
	switch p {
	case PhaseProcessing:
		return "Processing image..."
	case PhaseCompressing:
		return "Compressing image..."
	case PhaseEncoding:
		return "Converting to base64..."
	}
	return string(p)
}

// File is an image chosen by the user.
type File struct {
	Name      string
	Size      int64
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// FromBytes wraps in-memory content as a File with a declared media type.
func FromBytes(name, mediaType string, data []byte) File {
	return File{
		Name:      name,
		Size:      int64(len(data)),
		MediaType: mediaType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromPath describes a file on disk. Files picked from a terminal carry
// no declared type, so the media type is sniffed from the content.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("imageintake: stat %s: %w", path, err)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("imageintake: detect %s: %w", path, err)
	}
	// Drop parameters such as "; charset=binary".
	mediaType, _, _ := strings.Cut(mt.String(), ";")

	return File{
		Name:      filepath.Base(path),
		Size:      info.Size(),
		MediaType: strings.TrimSpace(mediaType),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Result is a successfully processed image.
type Result struct {
	DataURI      string
	Kind         types.AvatarKind
	MediaType    string
	OriginalSize int64
	// ProcessedSize is the byte size before base64 encoding.
	ProcessedSize int
	Resampled     bool
}

// ApproxKB estimates the decoded size of the data URI in kilobytes, the
// way a preview caption reports it.
func (r Result) ApproxKB() int {
	return (len(r.DataURI)*3/4 + 512) / 1024
}

// Processor validates, resamples and encodes image files.
type Processor struct {
	maxFileSize       int64
	resampleThreshold int64
	maxDimension      int
	quality           int
	maxEncodedLen     int
	log               *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxFileSize overrides the upper bound on the input file size.
func WithMaxFileSize(n int64) Option {
	return func(p *Processor) { p.maxFileSize = n }
}

// WithResampleThreshold sets the size above which files are resampled.
func WithResampleThreshold(n int64) Option {
	return func(p *Processor) { p.resampleThreshold = n }
}

// WithMaxDimension caps the longer side of a resampled image.
func WithMaxDimension(px int) Option {
	return func(p *Processor) { p.maxDimension = px }
}

// WithQuality sets the JPEG quality (1-100) used when resampling.
func WithQuality(q int) Option {
	return func(p *Processor) { p.quality = q }
}

// WithMaxEncodedLen sets the ceiling on the data URI length.
func WithMaxEncodedLen(n int) Option {
	return func(p *Processor) { p.maxEncodedLen = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.log = l }
}

// New returns a Processor with the default limits.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxFileSize:       MaxFileSize,
		resampleThreshold: ResampleThreshold,
		maxDimension:      MaxDimension,
		quality:           JPEGQuality,
		maxEncodedLen:     MaxEncodedLen,
		log:               slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process turns f into an embedded avatar. progress, if non-nil, is
// called as each phase starts. Every failure is an *Error.
func (p *Processor) Process(ctx context.Context, f File, progress func(Phase)) (Result, error) {
	report := func(ph Phase) {
		if progress != nil {
			progress(ph)
		}
	}

	report(PhaseProcessing)

	if f.Size <= 0 || f.Size > p.maxFileSize {
		return Result{}, newError(ReasonFileSize, nil)
	}
	if !allowed(f.MediaType) {
		return Result{}, newError(ReasonMediaType, nil)
	}

	data, err := readAll(f)
	if err != nil {
		return Result{}, newError(ReasonFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, newError(ReasonFailed, err)
	}

	mediaType := f.MediaType
	resampled := false
	if f.Size > p.resampleThreshold {
		report(PhaseCompressing)
		data, err = p.resample(data)
		if err != nil {
			return Result{}, newError(ReasonFailed, err)
		}
		mediaType = resampledMediaType
		resampled = true
		if err := ctx.Err(); err != nil {
			return Result{}, newError(ReasonFailed, err)
		}
	}

	report(PhaseEncoding)
	uri := EncodeDataURI(mediaType, data)
	if len(uri) > p.maxEncodedLen {
		p.log.Warn("image is still too large after processing",
			slog.String("file", f.Name),
			slog.Int("encoded_len", len(uri)))
		return Result{}, newError(ReasonEncodedSize, nil)
	}

	p.log.Debug("image processed",
		slog.String("file", f.Name),
		slog.Int64("original_size", f.Size),
		slog.Int("processed_size", len(data)),
		slog.Int("base64_length", len(uri)))

	return Result{
		DataURI:       uri,
		Kind:          types.AvatarEmbedded,
		MediaType:     mediaType,
		OriginalSize:  f.Size,
		ProcessedSize: len(data),
		Resampled:     resampled,
	}, nil
}

func allowed(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	for _, a := range AllowedTypes {
		if mt == a {
			return true
		}
	}
	return false
}

func readAll(f File) ([]byte, error) {
	if f.Open == nil {
		return nil, fmt.Errorf("no content for %s", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// resample scales the image so its longer side fits maxDimension and
// re-encodes it as JPEG. Transparent areas become white.
func (p *Processor) resample(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	w, h := FitWithin(src.Bounds().Dx(), src.Bounds().Dy(), p.maxDimension)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// FitWithin returns w×h scaled down, aspect preserved, so that the longer
// side is at most limit. Images already within the limit are unchanged.
func FitWithin(w, h, limit int) (int, int) {
	if w >= h {
		if w > limit {
			h = max(1, h*limit/w)
			w = limit
		}
		return w, h
	}
	if h > limit {
		w = max(1, w*limit/h)
		h = limit
	}
	return w, h
}

// EncodeDataURI builds "data:<mediaType>;base64,<body>".
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
