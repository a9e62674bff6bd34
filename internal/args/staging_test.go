package args

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/pdfproc/internal/domain"
)

func entries(t *testing.T, dir string) []string {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(list))
	for _, e := range list {
		names = append(names, e.Name())
	}
	return names
}

func TestScope_StagesBufferToPrivateFile(t *testing.T) {
	tmp := t.TempDir()
	scope := NewScope(tmp)

	in, err := scope.StageInput(domain.SourceFromBytes([]byte("%PDF-1.7 body")), InputFile)
	require.NoError(t, err)
	assert.Nil(t, in.Stdin)
	assert.Equal(t, tmp, filepath.Dir(in.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(in.Path), "pdfproc-in-"))

	data, err := os.ReadFile(in.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(data))

	info, err := os.Stat(in.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, scope.Release())
	assert.Empty(t, entries(t, tmp))
}

func TestScope_StdinModeDoesNotTouchDisk(t *testing.T) {
	tmp := t.TempDir()
	scope := NewScope(tmp)

	in, err := scope.StageInput(domain.SourceFromBytes([]byte("%PDF")), InputStdin)
	require.NoError(t, err)
	assert.Equal(t, StdinPath, in.Path)
	assert.Equal(t, []byte("%PDF"), in.Stdin)
	assert.Empty(t, entries(t, tmp))
}

func TestScope_PathSourceIsAbsolute(t *testing.T) {
	scope := NewScope(t.TempDir())

	in, err := scope.StageInput(domain.SourceFromPath("-leading-dash.pdf"), InputFile)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(in.Path))
	assert.Equal(t, "-leading-dash.pdf", filepath.Base(in.Path))
}

func TestScope_EmptyBuffer(t *testing.T) {
	_, err := NewScope(t.TempDir()).StageInput(domain.SourceFromBytes(nil), InputFile)
	assert.True(t, errors.Is(err, domain.ErrInvalidArguments))
}

func TestScope_ReserveOutputDir(t *testing.T) {
	tmp := t.TempDir()
	scope := NewScope(tmp)

	dir, prefix, err := scope.ReserveOutputDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, RenderPrefix), prefix)
	require.NoError(t, os.WriteFile(prefix+"-1.png", []byte("x"), 0o600))

	require.NoError(t, scope.Release())
	assert.NoDirExists(t, dir)
	assert.Empty(t, entries(t, tmp))
}

func TestScope_ReleaseIsIdempotent(t *testing.T) {
	tmp := t.TempDir()
	scope := NewScope(tmp)

	_, err := scope.StageInput(domain.SourceFromBytes([]byte("%PDF")), InputFile)
	require.NoError(t, err)
	_, _, err = scope.ReserveOutputDir()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, scope.Release())
		}()
	}
	wg.Wait()

	assert.NoError(t, scope.Release())
	assert.Empty(t, entries(t, tmp))
}

func TestScope_StagingAfterReleaseCleansUp(t *testing.T) {
	tmp := t.TempDir()
	scope := NewScope(tmp)
	require.NoError(t, scope.Release())

	_, _, err := scope.ReserveOutputDir()
	assert.Error(t, err)
	assert.Empty(t, entries(t, tmp))
}

func TestParseInputMode(t *testing.T) {
	mode, err := ParseInputMode("")
	require.NoError(t, err)
	assert.Equal(t, InputFile, mode)

	mode, err = ParseInputMode("STDIN")
	require.NoError(t, err)
	assert.Equal(t, InputStdin, mode)

	_, err = ParseInputMode("pipe")
	assert.Equal(t, domain.ErrorTypeConfig, domain.TypeOf(err))
}
