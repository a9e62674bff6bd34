//go:build unix

package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spherical/pdfproc/internal/args"
)

// StubDocument describes the document the fake poppler tools pretend to read.
type StubDocument struct {
	Pages int
	// Password, when set, must be passed with -upw or -opw.
	Password string
	// CallLog, when set, names a file each tool appends its own name to
	// before doing anything else. Read it back with Calls.
	CallLog string
}

// MinimalPDF is accepted by the fake tools; anything not starting with %PDF is
// rejected the way poppler does.
var MinimalPDF = []byte("%PDF-1.7\n% stub document\n%%EOF\n")

// stubPrelude parses the poppler flags the builders emit and performs the
// checks shared by all three tools.
const stubPrelude = `
PAGES=__PAGES__
PASSWORD='__PASSWORD__'
CALLLOG='__CALLLOG__'
if [ -n "$CALLLOG" ]; then echo "${0##*/}" >> "$CALLLOG"; fi
first=1
last=$PAGES
pw=""
fmt=png
bbox=""
input=""
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -f) first=$2; shift ;;
    -l) last=$2; shift ;;
    -upw|-opw) pw=$2; shift ;;
    -png|-jpeg|-tiff) fmt=${1#-} ;;
    -bbox) bbox=1 ;;
    -r|-enc|-x|-y|-W|-H|-scale-to-x|-scale-to-y|-antialias) shift ;;
    -) if [ -z "$input" ]; then input=-; else out=-; fi ;;
    -*) ;;
    *) if [ -z "$input" ]; then input=$1; else out=$1; fi ;;
  esac
  shift
done
if [ "$input" = "-" ]; then
  data=$(cat)
else
  [ -f "$input" ] || { echo "I/O Error: Couldn't open file '$input': No such file or directory." >&2; exit 1; }
  data=$(cat "$input")
fi
case "$data" in
  %PDF*) ;;
  *) echo "Syntax Warning: May not be a PDF file (continuing anyway)" >&2
     echo "Syntax Error: Couldn't find trailer dictionary" >&2
     exit 1 ;;
esac
if [ -n "$PASSWORD" ] && [ "$pw" != "$PASSWORD" ]; then
  echo "Command Line Error: Incorrect password" >&2
  exit 1
fi
if [ "$last" -gt "$PAGES" ]; then last=$PAGES; fi
if [ "$first" -gt "$last" ]; then
  echo "Wrong page range given: the first page ($first) can not be after the last page ($last)." >&2
  exit 99
fi
`

const stubInfo = `
echo "Title:           Stub Document"
echo "Producer:        testutil"
echo "Tagged:          no"
echo "Pages:           $PAGES"
if [ -n "$PASSWORD" ]; then
  echo "Encrypted:       yes (print:yes copy:no change:no addNotes:no algorithm:AES-256)"
else
  echo "Encrypted:       no"
fi
echo "Page size:       612 x 792 pts (letter)"
echo "PDF version:     1.7"
`

const stubText = `
i=$first
if [ -n "$bbox" ]; then
  echo '<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">'
  echo '<html xmlns="http://www.w3.org/1999/xhtml"><head><title></title></head><body><doc>'
  while [ "$i" -le "$last" ]; do
    echo '  <page width="612.000000" height="792.000000">'
    echo "    <word xMin=\"72.000000\" yMin=\"72.000000\" xMax=\"120.000000\" yMax=\"84.000000\">page$i</word>"
    echo '  </page>'
    i=$((i+1))
  done
  echo '</doc></body></html>'
  exit 0
fi
while [ "$i" -le "$last" ]; do
  printf 'page %d\n\f' "$i"
  i=$((i+1))
done
`

const stubRender = `
case $fmt in
  jpeg) ext=jpg ;;
  tiff) ext=tif ;;
  *) ext=png ;;
esac
width=${#PAGES}
i=$first
while [ "$i" -le "$last" ]; do
  f=$(printf "%s-%0${width}d.%s" "$out" "$i" "$ext")
  case $fmt in
    jpeg) printf '\377\330\377\340' > "$f" ;;
    tiff) printf 'II*\000' > "$f" ;;
    *) printf '\211PNG\r\n\032\n' > "$f" ;;
  esac
  printf 'page=%d pid=%d' "$i" "$$" >> "$f"
  i=$((i+1))
done
`

// PopplerStubs writes fake pdfinfo, pdftotext and pdftocairo executables into
// dir and returns them as configured tools.
func PopplerStubs(t testing.TB, dir string, doc StubDocument) args.Tools {
	t.Helper()
	if doc.Pages == 0 {
		doc.Pages = 3
	}
	prelude := strings.NewReplacer(
		"__PAGES__", strconv.Itoa(doc.Pages),
		"__PASSWORD__", doc.Password,
		"__CALLLOG__", doc.CallLog,
	).Replace(stubPrelude)

	return args.Tools{
		Info:   WriteScript(t, dir, "pdfinfo", prelude+stubInfo),
		Text:   WriteScript(t, dir, "pdftotext", prelude+stubText),
		Render: WriteScript(t, dir, "pdftocairo", prelude+stubRender),
	}
}

// Calls returns the tool names recorded in a StubDocument.CallLog, in the
// order they started. A missing log means nothing ran.
func Calls(t testing.TB, log string) []string {
	t.Helper()
	data, err := os.ReadFile(log)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("read call log: %v", err)
	}
	return strings.Fields(string(data))
}

// WritePDF writes MinimalPDF into dir and returns its path.
func WritePDF(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, MinimalPDF, 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}
