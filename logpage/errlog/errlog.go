// errlog.go
//
// Methods for decoding the Error Information log page
//
// The page is a run of fixed 64 byte entries; how many were fetched depends
// on the controller's advertised capability, so the page size is computed at
// call time rather than registered. An entry with a zero error count is the
// end marker, not an error.
package errlog

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"nvmeDiags/logpage"
)

type errorEntry struct {
	ErrorCount     uint64
	SQID           uint16
	CID            uint16
	Status         uint16
	ErrorLocation  uint16
	LBA            uint64
	NSID           uint32
	VendorSpecific uint8
	Rsvd29         [35]byte
}

// Completion status field layout: phase tag, status code, status code type,
// more, do-not-retry.
func (e *errorEntry) statusBits() (p, sc, sct, m, dnr uint16) {
	return e.Status & 0x1,
		e.Status >> 1 & 0xff,
		e.Status >> 9 & 0x7,
		e.Status >> 14 & 0x1,
		e.Status >> 15 & 0x1
}

type ErrorLogDecoder struct{}

var errorLogDecoder ErrorLogDecoder

// Register decoder function. Size 0: computed per controller.
func init() {
	logpage.RegisterPage(logpage.PageError, 0, &errorLogDecoder)
}

func (el *ErrorLogDecoder) Decode(buf []byte, w io.Writer) error {
	fmt.Fprintln(w, "Error Information Log")
	fmt.Fprintln(w, "=====================")

	r := bytes.NewReader(buf)
	var entry errorEntry
	entryNum := 0
	for {
		err := binary.Read(r, binary.LittleEndian, &entry)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			fmt.Fprintln(w, "end of entries", err, entryNum)
			return err
		}
		if entry.ErrorCount == 0 {
			if entryNum == 0 {
				fmt.Fprintln(w, "No error entries found")
			}
			return nil
		}
		entryNum++

		p, sc, sct, m, dnr := entry.statusBits()
		fmt.Fprintf(w, "Entry %02d\n", entryNum)
		fmt.Fprintln(w, "=========")
		fmt.Fprintf(w, " Error count:          %d\n", entry.ErrorCount)
		fmt.Fprintf(w, " Submission queue ID:  %d\n", entry.SQID)
		fmt.Fprintf(w, " Command ID:           %d\n", entry.CID)
		fmt.Fprintln(w, " Status:")
		fmt.Fprintf(w, "  Phase tag:           %d\n", p)
		fmt.Fprintf(w, "  Status code:         %d\n", sc)
		fmt.Fprintf(w, "  Status code type:    %d\n", sct)
		fmt.Fprintf(w, "  More:                %d\n", m)
		fmt.Fprintf(w, "  DNR:                 %d\n", dnr)
		fmt.Fprintf(w, " Error location:       %d\n", entry.ErrorLocation)
		fmt.Fprintf(w, " LBA:                  %d\n", entry.LBA)
		fmt.Fprintf(w, " Namespace ID:         %d\n", entry.NSID)
		fmt.Fprintf(w, " Vendor specific info: %d\n", entry.VendorSpecific)
	}
}
