// logpage.go
//
// Log page registry and decode pipeline
//
// Each NVMe log page is a numbered block of telemetry fetched on demand. Page
// decoders live in subpackages and register themselves with RegisterPage from
// an init() function; the main program imports the subpackages it wants for
// their side effects. Dispatch resolves a page id to a decoder and the buffer
// size that page must be fetched with; unknown pages fall back to a raw hex
// dump, as does an explicit hex mode request.
package logpage

import (
	"fmt"
	"io"
)

// Well known and vendor page identifiers.
const (
	PageError          = 0x01
	PageHealth         = 0x02
	PageFirmwareSlot   = 0x03
	PageHGSTInfo       = 0xc1
	PageIntelTempStats = 0xc5
	PageIntelAddSmart  = 0xca
)

const (
	// DefaultSize is fetched for pages with no registered size.
	DefaultSize = 4096
	// ErrorEntrySize is the wire size of one error information entry; the
	// error log's total size is computed per controller, not registered.
	ErrorEntrySize = 64
)

// A Decoder renders one fetched log page buffer as a human readable report.
// Decoders are total over well-formed-but-unknown input: unrecognized keys
// and subtypes render through fallback paths rather than failing.
type Decoder interface {
	Decode(buf []byte, w io.Writer) error
}

// Fetcher is the transport collaborator. It fills the caller's buffer with
// one blocking fetch of the requested page; a zero-filled buffer is a valid
// outcome and must decode cleanly.
type Fetcher interface {
	ReadLogPage(page uint8, nsid uint32, buf []byte) error
}

type pageEntry struct {
	page uint8
	size uint32
	dec  Decoder
}

// Process-wide registry. Populated from subpackage init() functions before
// main runs, read-only afterwards; first match wins on lookup.
var pageTable []pageEntry

func RegisterPage(page uint8, size uint32, dec Decoder) {
	pageTable = append(pageTable, pageEntry{page: page, size: size, dec: dec})
}

// Lookup returns the registered decoder and fetch size for a page id.
func Lookup(page uint8) (Decoder, uint32, bool) {
	for _, e := range pageTable {
		if e.page == page {
			return e.dec, e.size, true
		}
	}
	return nil, 0, false
}

// BufferSize reports how many bytes must be allocated and fetched for a page.
// The error information log is the one size computed at call time: entry size
// times the controller's max error log entries plus one (ELPE is zero based).
func BufferSize(page uint8, maxErrorLogEntries int) uint32 {
	if page == PageError {
		return ErrorEntrySize * uint32(maxErrorLogEntries+1)
	}
	if _, size, ok := Lookup(page); ok && size != 0 {
		return size
	}
	return DefaultSize
}

// NewLogBuffer allocates the zeroed decode buffer for one fetch. The buffer
// is owned by the decode that requested it and is not retained afterwards.
func NewLogBuffer(size uint32) []byte {
	return make([]byte, size)
}

// Decode runs the single-shot pipeline: resolve the page's decoder and size,
// allocate the buffer, have the transport fill it, render the report to w.
// Hex mode overrides any registered decoder.
func Decode(page uint8, hexMode bool, maxErrorLogEntries int, f Fetcher, nsid uint32, w io.Writer) error {
	var dec Decoder = HexDecoder{}
	size := uint32(DefaultSize)
	if !hexMode {
		if d, s, ok := Lookup(page); ok {
			dec = d
			size = s
		}
	}
	if page == PageError {
		size = BufferSize(page, maxErrorLogEntries)
	}

	buf := NewLogBuffer(size)
	if err := f.ReadLogPage(page, nsid, buf); err != nil {
		return fmt.Errorf("get log page request failed: %w", err)
	}
	return dec.Decode(buf, w)
}

// Temperature renders an NVMe Kelvin reading in all three scales.
func Temperature(t uint16) string {
	return fmt.Sprintf("%d K, %.2f C, %.2f F",
		t, float64(t)-273.15, float64(t)*9/5-459.67)
}

// HexDecoder is the fallback for unknown pages and for forced hex mode.
type HexDecoder struct{}

func (HexDecoder) Decode(buf []byte, w io.Writer) error {
	for off := 0; off < len(buf); off += 16 {
		fmt.Fprintf(w, "%03x: ", off)
		for i := off; i < off+16 && i < len(buf); i++ {
			fmt.Fprintf(w, "%02x ", buf[i])
		}
		fmt.Fprintln(w)
	}
	return nil
}
