// datafile.go
//
// Offline log page dump files
//
// Field engineers rarely have the failing drive on their desk. A data file
// wraps one raw log page dump with a small header recording which page it is,
// the namespace it was fetched for, and the controller's error log capability,
// so a dump captured on a customer system can be decoded anywhere. The file
// doubles as a Fetcher, standing in for the ioctl transport.
package datafile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"nvmeDiags/logpage"
)

const HeaderMagic = 0xdeadbeef

type DataFileHdr struct {
	HeaderMagic        uint32
	PageID             uint32
	NSID               uint32
	MaxErrorLogEntries uint32
	ImageSize          uint32
}

type File struct {
	Hdr     DataFileHdr
	Payload []byte
}

// Write emits a header followed by the raw page image.
func Write(w io.Writer, hdr DataFileHdr, payload []byte) error {
	hdr.HeaderMagic = HeaderMagic
	hdr.ImageSize = uint32(len(payload))
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// Load reads and validates a data file. A payload shorter than the declared
// image size is an error; longer trailing data is ignored.
func Load(r io.Reader) (*File, error) {
	var f File
	if err := binary.Read(r, binary.LittleEndian, &f.Hdr); err != nil {
		return nil, fmt.Errorf("data file header: %w", err)
	}
	if f.Hdr.HeaderMagic != HeaderMagic {
		return nil, fmt.Errorf("not a log page data file (magic %#x)", f.Hdr.HeaderMagic)
	}
	f.Payload = make([]byte, f.Hdr.ImageSize)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, fmt.Errorf("data file image: %w", err)
	}
	return &f, nil
}

// ReadLogPage implements logpage.Fetcher. The buffer was zeroed by the
// allocator, so a dump shorter than the requested size reads as zero filled.
func (f *File) ReadLogPage(page uint8, nsid uint32, buf []byte) error {
	if uint32(page) != f.Hdr.PageID {
		return fmt.Errorf("data file holds page %#x, not %#x", f.Hdr.PageID, page)
	}
	copy(buf, f.Payload)
	return nil
}

// DecodeDataFile decodes a dump file into a text report file.
func DecodeDataFile(filename string, decodeFilename string) error {
	reader, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	f, err := Load(reader)
	if err != nil {
		return err
	}

	writer, err := os.Create(decodeFilename)
	if err != nil {
		return err
	}
	defer writer.Close()

	return Decode(f, false, writer)
}

// Decode runs the standard pipeline against the file's own page id and
// capability data.
func Decode(f *File, hexMode bool, w io.Writer) error {
	return logpage.Decode(uint8(f.Hdr.PageID), hexMode,
		int(f.Hdr.MaxErrorLogEntries), f, f.Hdr.NSID, w)
}
