// Package parse converts raw poppler output into typed results.
// Parsers are pure functions of their input.
package parse

import (
	"strconv"
	"strings"

	"github.com/spherical/pdfproc/internal/domain"
)

// Labels pdfinfo prints for the fields DocumentInfo types.
const (
	labelTitle        = "Title"
	labelAuthor       = "Author"
	labelSubject      = "Subject"
	labelKeywords     = "Keywords"
	labelCreator      = "Creator"
	labelProducer     = "Producer"
	labelCreationDate = "CreationDate"
	labelModDate      = "ModDate"
	labelPDFVersion   = "PDF version"
	labelPageSize     = "Page size"
	labelPages        = "Pages"
	labelTagged       = "Tagged"
	labelOptimized    = "Optimized"
	labelEncrypted    = "Encrypted"
)

// Info parses pdfinfo output. Lines without a colon are skipped and unknown
// keys are kept in Extras. Output without a single key/value line is malformed.
func Info(raw []byte) (*domain.DocumentInfo, error) {
	info := &domain.DocumentInfo{Extras: map[string]string{}}
	seen := 0

	for _, line := range strings.Split(DecodeUTF8(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		seen++

		switch key {
		case labelTitle:
			info.Title = ptr(value)
		case labelAuthor:
			info.Author = ptr(value)
		case labelSubject:
			info.Subject = ptr(value)
		case labelKeywords:
			info.Keywords = ptr(value)
		case labelCreator:
			info.Creator = ptr(value)
		case labelProducer:
			info.Producer = ptr(value)
		case labelCreationDate:
			info.CreationDate = ptr(value)
		case labelModDate:
			info.ModDate = ptr(value)
		case labelPDFVersion:
			info.PDFVersion = ptr(value)
		case labelPageSize:
			info.PageSize = ptr(value)
		case labelPages:
			if n, err := strconv.Atoi(value); err == nil && n >= 0 {
				info.Pages = &n
			} else {
				info.Extras[key] = value
			}
		case labelTagged:
			info.Tagged = parseBool(value)
		case labelOptimized:
			info.Optimized = parseBool(value)
		case labelEncrypted:
			info.Encrypted, info.Encryption = parseEncryption(value)
		default:
			info.Extras[key] = value
		}
	}

	if seen == 0 {
		return nil, domain.MalformedOutputError("pdfinfo printed no key/value lines", nil)
	}
	return info, nil
}

func ptr[T any](v T) *T {
	return &v
}

func parseBool(value string) *bool {
	switch value {
	case "yes":
		return ptr(true)
	case "no":
		return ptr(false)
	}
	return nil
}

// parseEncryption handles "no" and "yes (print:yes copy:no algorithm:AES-256)".
// Options are optional; anything unparseable inside the parentheses is ignored.
func parseEncryption(value string) (bool, *domain.EncryptionInfo) {
	state, rest, _ := strings.Cut(value, " ")
	if state != "yes" {
		return false, nil
	}

	enc := &domain.EncryptionInfo{Options: map[string]string{}}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimPrefix(rest, "(")
	rest = strings.TrimSuffix(rest, ")")
	for _, field := range strings.Fields(rest) {
		k, v, ok := strings.Cut(field, ":")
		if !ok || k == "" {
			continue
		}
		enc.Options[k] = v
	}
	return true, enc
}
