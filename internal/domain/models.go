package domain

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// Source represents the PDF being processed: either a file on disk or an
// in-memory buffer. A Source is immutable once constructed.
type Source struct {
	path string
	data []byte
}

// SourceFromPath creates a source that hands path to the external tool.
func SourceFromPath(path string) Source {
	return Source{path: path}
}

// SourceFromBytes creates a source from a PDF held in memory. The buffer is copied.
func SourceFromBytes(data []byte) Source {
	return Source{data: bytes.Clone(data)}
}

// Path returns the filesystem path, or "" for an in-memory source.
func (s Source) Path() string { return s.path }

// Bytes returns the in-memory buffer, or nil for a path source.
func (s Source) Bytes() []byte { return s.data }

// IsBuffer reports whether the source lives in memory.
func (s Source) IsBuffer() bool { return s.path == "" }

func (s Source) String() string {
	if s.IsBuffer() {
		return fmt.Sprintf("buffer(%d bytes)", len(s.data))
	}
	return s.path
}

// Secret hides its value from fmt, logs and marshalling.
type Secret string

const redacted = "******"

func (Secret) String() string { return redacted }

func (Secret) GoString() string { return redacted }

// Format keeps %v, %s, %q and friends from printing the value.
func (Secret) Format(f fmt.State, _ rune) { _, _ = f.Write([]byte(redacted)) }

func (Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

// Reveal returns the raw value for use as a process argument.
func (s Secret) Reveal() string { return string(s) }

// PasswordKind selects which poppler password flag is used.
type PasswordKind int

const (
	// UserPassword opens the document with user privileges (-upw).
	UserPassword PasswordKind = iota
	// OwnerPassword bypasses all security restrictions (-opw).
	OwnerPassword
)

// Password for an encrypted PDF.
type Password struct {
	Kind  PasswordKind
	Value Secret
}

// UserPasswordOf builds a user password.
func UserPasswordOf(value string) *Password {
	return &Password{Kind: UserPassword, Value: Secret(value)}
}

// OwnerPasswordOf builds an owner password.
func OwnerPasswordOf(value string) *Password {
	return &Password{Kind: OwnerPassword, Value: Secret(value)}
}

// Flag returns the command-line flag for the password kind.
func (p Password) Flag() string {
	if p.Kind == OwnerPassword {
		return "-opw"
	}
	return "-upw"
}

// PageRange is an optional, 1-indexed, inclusive page range.
// A zero PageRange means "all pages". A bound is set when it is non-zero or
// when it was given to one of the constructors, so Pages(0, 3) keeps its
// invalid first page instead of reading as "from the start".
type PageRange struct {
	First int
	Last  int

	firstSet bool
	lastSet  bool
}

// Pages selects first..last inclusive.
func Pages(first, last int) PageRange {
	return PageRange{First: first, Last: last, firstSet: true, lastSet: true}
}

// Page selects a single page.
func Page(n int) PageRange { return Pages(n, n) }

// FromPage selects page n through the end of the document.
func FromPage(n int) PageRange { return PageRange{First: n, firstSet: true} }

// ToPage selects the first page through page n.
func ToPage(n int) PageRange { return PageRange{Last: n, lastSet: true} }

// HasFirst reports whether the first bound was given.
func (r PageRange) HasFirst() bool { return r.firstSet || r.First != 0 }

// HasLast reports whether the last bound was given.
func (r PageRange) HasLast() bool { return r.lastSet || r.Last != 0 }

// IsZero reports whether no bound is set.
func (r PageRange) IsZero() bool { return !r.HasFirst() && !r.HasLast() }

// Bounded reports whether both ends are known.
func (r PageRange) Bounded() bool { return r.HasFirst() && r.HasLast() }

// Start returns the first page the range covers.
func (r PageRange) Start() int {
	if r.HasFirst() {
		return r.First
	}
	return 1
}

// Count returns the number of pages in a range with a known last page.
func (r PageRange) Count() int {
	if r.Last < r.Start() {
		return 0
	}
	return r.Last - r.Start() + 1
}

func (r PageRange) String() string {
	switch {
	case r.IsZero():
		return "all"
	case !r.HasLast():
		return fmt.Sprintf("%d-", r.First)
	case !r.HasFirst():
		return fmt.Sprintf("-%d", r.Last)
	default:
		return fmt.Sprintf("%d-%d", r.First, r.Last)
	}
}

// OutputFormat is the image encoder pdftocairo uses.
type OutputFormat string

const (
	FormatPNG  OutputFormat = "png"
	FormatJPEG OutputFormat = "jpeg"
	FormatTIFF OutputFormat = "tiff"
)

// Extension returns the file extension pdftocairo writes for the format.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tif"
	default:
		return ".png"
	}
}

// ParseOutputFormat accepts png, jpeg/jpg and tiff/tif.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	}
	return "", InvalidArgumentsError(fmt.Sprintf("unsupported output format %q", s), nil)
}

// ColorMode controls the colour depth of rendered pages.
type ColorMode string

const (
	ColorFull       ColorMode = ""
	ColorMonochrome ColorMode = "mono"
	ColorGrayscale  ColorMode = "gray"
)

// Antialias is passed to pdftocairo's -antialias flag.
type Antialias string

const (
	AntialiasDefault  Antialias = "default"
	AntialiasNone     Antialias = "none"
	AntialiasGray     Antialias = "gray"
	AntialiasSubpixel Antialias = "subpixel"
	AntialiasFast     Antialias = "fast"
	AntialiasGood     Antialias = "good"
	AntialiasBest     Antialias = "best"
)

// Crop selects a pixel area of the rendered page.
type Crop struct {
	X, Y          int
	Width, Height int
}

// ScaleTo fits the rendered page inside X by Y pixels. -1 keeps the aspect ratio.
type ScaleTo struct {
	X, Y int
}

// KeepAspect is the ScaleTo value that preserves the aspect ratio on that axis.
const KeepAspect = -1

// Invocation holds per-call process settings shared by every operation.
type Invocation struct {
	// Executable overrides the configured tool path for this call.
	Executable string
	// Timeout bounds this call in addition to any context deadline.
	Timeout time.Duration
}

// RenderOptions configures a render.
type RenderOptions struct {
	Invocation
	Range       PageRange
	Format      OutputFormat
	DPI         int
	Password    *Password
	ScaleTo     *ScaleTo
	Crop        *Crop
	CropBox     bool
	Color       ColorMode
	Transparent bool
	Antialias   Antialias
}

// TextEncoding names the encoding pdftotext emits.
type TextEncoding string

const (
	EncodingUTF8   TextEncoding = "UTF-8"
	EncodingLatin1 TextEncoding = "Latin1"
)

// TextOptions configures text extraction.
type TextOptions struct {
	Invocation
	Range      PageRange
	Password   *Password
	SplitPages bool
	Layout     bool
	Raw        bool
	Encoding   TextEncoding
	Normalize  bool
}

// InfoOptions configures metadata reads.
type InfoOptions struct {
	Invocation
	// Range makes pdfinfo print per-page box sizes, kept in DocumentInfo.Extras.
	Range    PageRange
	Password *Password
	ISODates bool
}

// WordsOptions configures bounding-box extraction.
type WordsOptions struct {
	Invocation
	Range    PageRange
	Password *Password
}

// DocumentInfo is the metadata reported by pdfinfo.
type DocumentInfo struct {
	Title        *string
	Author       *string
	Subject      *string
	Keywords     *string
	Creator      *string
	Producer     *string
	CreationDate *string
	ModDate      *string
	PDFVersion   *string
	PageSize     *string
	Pages        *int
	Tagged       *bool
	Optimized    *bool
	Encrypted    bool
	Encryption   *EncryptionInfo
	Extras       map[string]string
}

// PageCount returns the page count, or 0 when pdfinfo did not report one.
func (d DocumentInfo) PageCount() int {
	if d.Pages == nil {
		return 0
	}
	return *d.Pages
}

// EncryptionInfo holds the permission flags printed after "Encrypted: yes".
type EncryptionInfo struct {
	Options map[string]string
}

func (e EncryptionInfo) allowed(key string) bool {
	v, ok := e.Options[key]
	return !ok || v == "yes"
}

func (e EncryptionInfo) PrintAllowed() bool    { return e.allowed("print") }
func (e EncryptionInfo) CopyAllowed() bool     { return e.allowed("copy") }
func (e EncryptionInfo) ChangeAllowed() bool   { return e.allowed("change") }
func (e EncryptionInfo) AddNotesAllowed() bool { return e.allowed("addNotes") }

// Algorithm returns the encryption algorithm, e.g. AES-256.
func (e EncryptionInfo) Algorithm() string { return e.Options["algorithm"] }

// PageText is the text of one page. Page is 0 for a concatenated block.
type PageText struct {
	Page int
	Text string
}

// ExtractedText is the ordered result of a text extraction.
type ExtractedText struct {
	Pages []PageText
}

// String joins all blocks.
func (t ExtractedText) String() string {
	var b strings.Builder
	for _, p := range t.Pages {
		b.WriteString(p.Text)
	}
	return b.String()
}

// RenderedImage is one encoded page image.
type RenderedImage struct {
	Page   int
	Format OutputFormat
	Data   []byte
}

// Word is a word and its bounding box in PDF points.
type Word struct {
	Text string
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// PageWords is the bounding-box output for one page.
type PageWords struct {
	Page   int
	Width  float64
	Height float64
	Words  []Word
}

// Outcome is what a finished process produced.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}
