// firmware.go
//
// Methods for decoding the Firmware Slot log page
//
// Seven revision slots of eight bytes each. A slot is either empty (all
// zero), an ASCII firmware tag, or opaque bytes shown as hex.
package firmware

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"nvmeDiags/logpage"
)

const maxSlots = 7

type firmwarePage struct {
	AFI      uint8
	Rsvd1    [7]byte
	Revision [maxSlots]uint64
	Rsvd64   [448]byte
}

type FirmwareDecoder struct{}

var firmwareDecoder FirmwareDecoder

// Register decoder function
func init() {
	logpage.RegisterPage(logpage.PageFirmwareSlot, uint32(binary.Size(firmwarePage{})), &firmwareDecoder)
}

func isPrint(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

func (fw *FirmwareDecoder) Decode(buf []byte, w io.Writer) error {
	var page firmwarePage
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &page); err != nil {
		fmt.Fprintln(w, "short firmware page:", err)
		return err
	}

	fmt.Fprintln(w, "Firmware Slot Log")
	fmt.Fprintln(w, "=================")

	active := page.AFI & 0x7
	for i := 0; i < maxSlots; i++ {
		fmt.Fprintf(w, "Slot %d: ", i+1)
		status := "Inactive"
		if active == uint8(i+1) {
			status = "  Active"
		}

		rev := page.Revision[i]
		switch {
		case rev == 0:
			fmt.Fprintln(w, "Empty")
		case isPrint(byte(rev)):
			var tag [8]byte
			binary.LittleEndian.PutUint64(tag[:], rev)
			fmt.Fprintf(w, "[%s] %s\n", status, strings.TrimRight(string(tag[:]), "\x00"))
		default:
			fmt.Fprintf(w, "[%s] %016x\n", status, rev)
		}
	}
	return nil
}
