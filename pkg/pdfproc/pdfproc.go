// Package pdfproc extracts text, metadata and page images from PDF documents
// by driving the poppler command-line tools (pdfinfo, pdftotext, pdftocairo).
//
// Every operation spawns its own process, drains its output concurrently,
// honours the context deadline and removes its temporary files before
// returning. A Client holds no mutable state and is safe for concurrent use.
package pdfproc

import (
	"github.com/spherical/pdfproc/internal/config"
	"github.com/spherical/pdfproc/internal/domain"
	"github.com/spherical/pdfproc/internal/imaging"
)

// Re-export input types for public API
type (
	Source        = domain.Source
	Password      = domain.Password
	Secret        = domain.Secret
	PageRange     = domain.PageRange
	Invocation    = domain.Invocation
	RenderOptions = domain.RenderOptions
	TextOptions   = domain.TextOptions
	InfoOptions   = domain.InfoOptions
	WordsOptions  = domain.WordsOptions
	OutputFormat  = domain.OutputFormat
	ColorMode     = domain.ColorMode
	Antialias     = domain.Antialias
	Crop          = domain.Crop
	ScaleTo       = domain.ScaleTo
	TextEncoding  = domain.TextEncoding
)

// Re-export result types
type (
	DocumentInfo    = domain.DocumentInfo
	EncryptionInfo  = domain.EncryptionInfo
	ExtractedText   = domain.ExtractedText
	PageText        = domain.PageText
	RenderedImage   = domain.RenderedImage
	PageWords       = domain.PageWords
	Word            = domain.Word
	StreamEvent     = domain.StreamEvent
	EventType       = domain.EventType
	ProcessingStats = domain.ProcessingStats
)

// Re-export process types so callers can supply their own Runner.
type (
	Runner     = domain.Runner
	RunnerFunc = domain.RunnerFunc
	Command    = domain.Command
	Outcome    = domain.Outcome
)

// Error is the structured error every operation returns.
type (
	Error     = domain.DomainError
	ErrorType = domain.ErrorType
)

// Config holds client configuration. Use DefaultConfig or LoadConfig.
type Config = config.Config

// Constructors
var (
	SourceFromPath  = domain.SourceFromPath
	SourceFromBytes = domain.SourceFromBytes
	UserPassword    = domain.UserPasswordOf
	OwnerPassword   = domain.OwnerPasswordOf
	Pages           = domain.Pages
	Page            = domain.Page
	FromPage        = domain.FromPage
	ToPage          = domain.ToPage
	ParseFormat     = domain.ParseOutputFormat
	DefaultConfig   = config.DefaultConfig
	LoadConfig      = config.Load
	ErrorTypeOf     = domain.TypeOf
)

// Output formats
const (
	FormatPNG  = domain.FormatPNG
	FormatJPEG = domain.FormatJPEG
	FormatTIFF = domain.FormatTIFF
)

// Colour modes
const (
	ColorFull       = domain.ColorFull
	ColorMonochrome = domain.ColorMonochrome
	ColorGrayscale  = domain.ColorGrayscale
)

// Text encodings
const (
	EncodingUTF8   = domain.EncodingUTF8
	EncodingLatin1 = domain.EncodingLatin1
)

// KeepAspect preserves the aspect ratio on one ScaleTo axis.
const KeepAspect = domain.KeepAspect

// Event type constants
const (
	EventStart          = domain.EventStart
	EventPageProcessing = domain.EventPageProcessing
	EventPageComplete   = domain.EventPageComplete
	EventError          = domain.EventError
	EventComplete       = domain.EventComplete
)

// Error types
const (
	ErrorTypeExecutableNotFound = domain.ErrorTypeExecutableNotFound
	ErrorTypeInvalidArguments   = domain.ErrorTypeInvalidArguments
	ErrorTypePasswordRequired   = domain.ErrorTypePasswordRequired
	ErrorTypeIncorrectPassword  = domain.ErrorTypeIncorrectPassword
	ErrorTypeTimeout            = domain.ErrorTypeTimeout
	ErrorTypeProcessFailed      = domain.ErrorTypeProcessFailed
	ErrorTypeMalformedOutput    = domain.ErrorTypeMalformedOutput
	ErrorTypeNotPDF             = domain.ErrorTypeNotPDF
	ErrorTypePageOutOfRange     = domain.ErrorTypePageOutOfRange
	ErrorTypePermissionDenied   = domain.ErrorTypePermissionDenied
	ErrorTypeConfig             = domain.ErrorTypeConfig
)

// Sentinels for errors.Is.
var (
	ErrExecutableNotFound = domain.ErrExecutableNotFound
	ErrInvalidArguments   = domain.ErrInvalidArguments
	ErrPasswordRequired   = domain.ErrPasswordRequired
	ErrIncorrectPassword  = domain.ErrIncorrectPassword
	ErrTimeout            = domain.ErrTimeout
	ErrProcessFailed      = domain.ErrProcessFailed
	ErrMalformedOutput    = domain.ErrMalformedOutput
	ErrNotPDF             = domain.ErrNotPDF
	ErrPageOutOfRange     = domain.ErrPageOutOfRange
	ErrPermissionDenied   = domain.ErrPermissionDenied
	ErrOCRNotEnabled      = imaging.ErrOCRNotEnabled
)
