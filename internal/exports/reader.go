package exports

import (
	"io"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// NewANSIReader wraps an export stream with a Windows-1252 to UTF-8 decoder.
// The ledger writes its exports in the Windows "ANSI" code page, which shows
// up in party names and free-text columns.
func NewANSIReader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.Windows1252.NewDecoder())
}
