package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	data := []byte("%PDF-1.7")
	src := SourceFromBytes(data)
	data[0] = 'X'

	assert.True(t, src.IsBuffer())
	assert.Equal(t, byte('%'), src.Bytes()[0], "buffer must be copied")
	assert.Equal(t, "buffer(8 bytes)", src.String())

	path := SourceFromPath("/tmp/a.pdf")
	assert.False(t, path.IsBuffer())
	assert.Nil(t, path.Bytes())
	assert.Equal(t, "/tmp/a.pdf", path.String())
}

func TestSecret_NeverPrinted(t *testing.T) {
	pw := UserPasswordOf("hunter2")

	for _, s := range []string{
		fmt.Sprint(pw.Value),
		fmt.Sprintf("%v %s %q %#v", pw.Value, pw.Value, pw.Value, pw.Value),
		fmt.Sprintf("%+v", *pw),
	} {
		assert.NotContains(t, s, "hunter2")
	}

	out, err := json.Marshal(pw)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")

	assert.Equal(t, "hunter2", pw.Value.Reveal())
	assert.Equal(t, "-upw", pw.Flag())
	assert.Equal(t, "-opw", OwnerPasswordOf("x").Flag())
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		name    string
		r       PageRange
		zero    bool
		bounded bool
		start   int
		count   int
		str     string
	}{
		{name: "all", r: PageRange{}, zero: true, start: 1, str: "all"},
		{name: "single", r: Page(4), bounded: true, start: 4, count: 1, str: "4-4"},
		{name: "span", r: Pages(2, 5), bounded: true, start: 2, count: 4, str: "2-5"},
		{name: "open end", r: FromPage(3), start: 3, str: "3-"},
		{name: "open start", r: PageRange{Last: 6}, start: 1, count: 6, str: "-6"},
		{name: "inverted", r: Pages(5, 2), bounded: true, start: 5, count: 0, str: "5-2"},
		{name: "to page", r: ToPage(4), start: 1, count: 4, str: "-4"},
		{name: "explicit zero start", r: Pages(0, 3), bounded: true, start: 0, count: 4, str: "0-3"},
		{name: "page zero", r: Page(0), bounded: true, start: 0, count: 1, str: "0-0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.zero, tt.r.IsZero())
			assert.Equal(t, tt.bounded, tt.r.Bounded())
			assert.Equal(t, tt.start, tt.r.Start())
			assert.Equal(t, tt.count, tt.r.Count())
			assert.Equal(t, tt.str, tt.r.String())
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := map[string]OutputFormat{
		"":      FormatPNG,
		"png":   FormatPNG,
		"JPEG":  FormatJPEG,
		" jpg ": FormatJPEG,
		"tif":   FormatTIFF,
		"tiff":  FormatTIFF,
	}
	for in, want := range tests {
		got, err := ParseOutputFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOutputFormat("bmp")
	assert.True(t, errors.Is(err, ErrInvalidArguments))

	assert.Equal(t, ".png", FormatPNG.Extension())
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".tif", FormatTIFF.Extension())
}

func TestEncryptionInfo(t *testing.T) {
	enc := EncryptionInfo{Options: map[string]string{
		"print":     "yes",
		"copy":      "no",
		"algorithm": "AES-256",
	}}

	assert.True(t, enc.PrintAllowed())
	assert.False(t, enc.CopyAllowed())
	assert.True(t, enc.ChangeAllowed(), "unlisted permissions are allowed")
	assert.Equal(t, "AES-256", enc.Algorithm())
}

func TestDocumentInfo_PageCount(t *testing.T) {
	assert.Equal(t, 0, DocumentInfo{}.PageCount())
	n := 12
	assert.Equal(t, 12, DocumentInfo{Pages: &n}.PageCount())
}

func TestDomainError(t *testing.T) {
	err := fmt.Errorf("render: %w", TimeoutError("pdftocairo exceeded 5s", errors.New("deadline")))

	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, ErrProcessFailed))
	assert.Equal(t, ErrorTypeTimeout, TypeOf(err))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, "render: [timeout] pdftocairo exceeded 5s: deadline", err.Error())

	failed := ProcessFailedError("pdfinfo", 7, "boom")
	assert.Equal(t, "[process_failed] pdfinfo failed (exit code 7)", failed.Error())
	assert.Equal(t, "boom", failed.Stderr)
}
