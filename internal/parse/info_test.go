package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdfproc/internal/domain"
)

const ropesInfo = `Title:           Ropes: an Alternative to Strings
Subject:
Keywords:        character strings, concatenation, Cedar, immutable, C, balanced trees
Author:          Hans-J. Boehm, Russ Atkinson and Michael Plass
Producer:        Acrobat Distiller 2.0 for Windows
CreationDate:    Sun Aug 25 21:00:20 1996 NZST
ModDate:         Sat Nov  2 06:49:17 1996 NZDT
Custom Metadata: no
Metadata Stream: no
Tagged:          no
UserProperties:  no
Suspects:        no
Form:            none
JavaScript:      no
Pages:           16
Encrypted:       no
Page size:       540 x 738 pts
Page rot:        0
File size:       169205 bytes
Optimized:       yes
PDF version:     1.2
`

func TestInfo_TypedFields(t *testing.T) {
	info, err := Info([]byte(ropesInfo))
	require.NoError(t, err)

	require.NotNil(t, info.Title)
	assert.Equal(t, "Ropes: an Alternative to Strings", *info.Title)
	require.NotNil(t, info.Subject)
	assert.Equal(t, "", *info.Subject)
	assert.Equal(t, "Hans-J. Boehm, Russ Atkinson and Michael Plass", *info.Author)
	assert.Equal(t, "Sat Nov  2 06:49:17 1996 NZDT", *info.ModDate)
	assert.Equal(t, "540 x 738 pts", *info.PageSize)
	assert.Equal(t, "1.2", *info.PDFVersion)
	assert.Nil(t, info.Creator)

	assert.Equal(t, 16, info.PageCount())
	assert.False(t, info.Encrypted)
	assert.Nil(t, info.Encryption)
	require.NotNil(t, info.Tagged)
	assert.False(t, *info.Tagged)
	require.NotNil(t, info.Optimized)
	assert.True(t, *info.Optimized)
}

func TestInfo_UnknownKeysGoToExtras(t *testing.T) {
	info, err := Info([]byte(ropesInfo))
	require.NoError(t, err)

	assert.Equal(t, "none", info.Extras["Form"])
	assert.Equal(t, "169205 bytes", info.Extras["File size"])
	assert.Equal(t, "no", info.Extras["Custom Metadata"])
	assert.NotContains(t, info.Extras, "Title")
	assert.NotContains(t, info.Extras, "Pages")
}

func TestInfo_Idempotent(t *testing.T) {
	a, err := Info([]byte(ropesInfo))
	require.NoError(t, err)
	b, err := Info([]byte(ropesInfo))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestInfo_Encryption(t *testing.T) {
	out := "Pages:          2\nEncrypted:      yes (print:yes copy:no change:no addNotes:no algorithm:AES-256)\n"
	info, err := Info([]byte(out))
	require.NoError(t, err)

	assert.True(t, info.Encrypted)
	require.NotNil(t, info.Encryption)
	assert.True(t, info.Encryption.PrintAllowed())
	assert.False(t, info.Encryption.CopyAllowed())
	assert.False(t, info.Encryption.ChangeAllowed())
	assert.False(t, info.Encryption.AddNotesAllowed())
	assert.Equal(t, "AES-256", info.Encryption.Algorithm())
}

func TestInfo_EncryptedWithoutOptions(t *testing.T) {
	info, err := Info([]byte("Encrypted: yes\n"))
	require.NoError(t, err)
	assert.True(t, info.Encrypted)
	require.NotNil(t, info.Encryption)
	assert.True(t, info.Encryption.CopyAllowed())
	assert.Empty(t, info.Encryption.Algorithm())
}

func TestInfo_MissingAndOddFields(t *testing.T) {
	out := "garbage line without separator\nPages: many\nTagged: maybe\r\nPage    1 size: 612 x 792 pts\n"
	info, err := Info([]byte(out))
	require.NoError(t, err)

	assert.Nil(t, info.Pages)
	assert.Equal(t, 0, info.PageCount())
	assert.Equal(t, "many", info.Extras["Pages"])
	assert.Nil(t, info.Tagged)
	assert.Nil(t, info.Title)
	assert.Equal(t, "612 x 792 pts", info.Extras["Page    1 size"])
}

func TestInfo_InvalidUTF8IsReplaced(t *testing.T) {
	info, err := Info([]byte("Title: caf\xe9\n"))
	require.NoError(t, err)
	assert.Equal(t, "caf\ufffd", *info.Title)
}

func TestInfo_Malformed(t *testing.T) {
	for _, out := range []string{"", "\n\n", "no separators here"} {
		_, err := Info([]byte(out))
		assert.True(t, errors.Is(err, domain.ErrMalformedOutput), "output %q", out)
	}
}
