// hgst.go
//
// Methods for decoding the HGST extra info log page
//
// A grab bag of subpages behind an outer TLV stream: {subtype, reserved,
// little endian length, payload}. The outer header's declared length bounds
// the walk; every advance is checked against that bound before the payload
// is touched, because both the outer and inner length fields come from
// firmware. See the SN100/SN150 product manuals, Appendix A.
package hgst

import (
	"encoding/binary"
	"fmt"
	"io"

	"nvmeDiags/logpage"
)

// Subpage type codes
const (
	subWriteErrors    = 0x02
	subReadErrors     = 0x03
	subVerifyErrors   = 0x05
	subSelfTest       = 0x10
	subBackgroundScan = 0x15
	subEraseErrors    = 0x30
	subEraseCounts    = 0x31
	subTempHistory    = 0x32
	subSSDPerf        = 0x37
	subFirmwareLoad   = 0x38
)

type subpageFn func(p []byte, subtype uint8, res uint8, w io.Writer)

type subpagePrint struct {
	key uint8
	fn  subpageFn
}

// Immutable subtype dispatch table; first match wins.
var subpageTable = []subpagePrint{
	{subWriteErrors, printWriteErrors},
	{subReadErrors, printReadErrors},
	{subVerifyErrors, printVerifyErrors},
	{subSelfTest, printSelfTest},
	{subBackgroundScan, printBackgroundScan},
	{subEraseErrors, printEraseErrors},
	{subEraseCounts, printEraseCounts},
	{subTempHistory, printTempHistory},
	{subSSDPerf, printSSDPerf},
	{subFirmwareLoad, printFirmwareLoad},
}

func dispatch(p []byte, subtype uint8, res uint8, w io.Writer) {
	for _, sp := range subpageTable {
		if sp.key == subtype {
			sp.fn(p, subtype, res, w)
			return
		}
	}
	fmt.Fprintf(w, "No handler for page type %x\n", subtype)
}

type InfoLogDecoder struct{}

var infoLogDecoder InfoLogDecoder

// Register decoder function
func init() {
	logpage.RegisterPage(logpage.PageHGSTInfo, logpage.DefaultSize, &infoLogDecoder)
}

func (il *InfoLogDecoder) Decode(buf []byte, w io.Writer) error {
	fmt.Fprintln(w, "HGST Extra Info Log")
	fmt.Fprintln(w, "===================")

	cur := logpage.NewCursor(buf)

	// Outer header: record count, reserved, length of the walkable region
	// (exclusive of this header).
	hdr, err := cur.Bytes(4)
	if err != nil {
		fmt.Fprintln(w, "short extra info header")
		return err
	}
	length := binary.LittleEndian.Uint16(hdr[2:])
	cur.Limit(int(length))

	for cur.Remaining() > 0 {
		subtype, err := cur.Byte()
		if err != nil {
			break
		}
		subtype &= 0x3f
		res, err := cur.Byte()
		if err != nil {
			fmt.Fprintln(w, "Ooops! Off the end of the list")
			break
		}
		plen, err := cur.LE16()
		if err != nil {
			fmt.Fprintln(w, "Ooops! Off the end of the list")
			break
		}
		// The declared length governs the outer walk; if it claims more
		// than remains, the rest of the page cannot be trusted.
		payload, err := cur.Bytes(int(plen))
		if err != nil {
			fmt.Fprintln(w, "Ooops! Off the end of the list")
			break
		}
		dispatch(payload, subtype, res, w)
	}
	return nil
}

// Print a subpage that is basically just key value pairs. The value length
// is clamped to what remains and to the 8 byte accumulator before consuming.
func printSubpageKV(p []byte, w io.Writer, kv []logpage.KV) {
	cur := logpage.NewCursor(p)
	for cur.Remaining() >= 4 {
		ptype, _ := cur.LE16()
		cur.Skip(1) // Flags, just ignore
		plen, _ := cur.Byte()
		n := int(plen)
		if n > cur.Remaining() {
			n = cur.Remaining()
		}
		if n > 8 {
			n = 8
		}
		val, _ := cur.Bytes(n)
		var param uint64
		for i, b := range val {
			param |= uint64(b) << (i * 8)
		}
		fmt.Fprintf(w, "  %-30s: %d\n", logpage.KVLookup(kv, uint32(ptype)), param)
	}
}

func printWriteErrors(p []byte, subtype uint8, res uint8, w io.Writer) {
	kv := []logpage.KV{
		{Key: 0x0000, Name: "Corrected Without Delay"},
		{Key: 0x0001, Name: "Corrected Maybe Delayed"},
		{Key: 0x0002, Name: "Re-Writes"},
		{Key: 0x0003, Name: "Errors Corrected"},
		{Key: 0x0004, Name: "Correct Algorithm Used"},
		{Key: 0x0005, Name: "Bytes Processed"},
		{Key: 0x0006, Name: "Uncorrected Errors"},
		{Key: 0x8000, Name: "Flash Write Commands"},
		{Key: 0x8001, Name: "HGST Special"},
	}
	fmt.Fprintln(w, "Write Errors Subpage:")
	printSubpageKV(p, w, kv)
}

func printReadErrors(p []byte, subtype uint8, res uint8, w io.Writer) {
	kv := []logpage.KV{
		{Key: 0x0000, Name: "Corrected Without Delay"},
		{Key: 0x0001, Name: "Corrected Maybe Delayed"},
		{Key: 0x0002, Name: "Re-Reads"},
		{Key: 0x0003, Name: "Errors Corrected"},
		{Key: 0x0004, Name: "Correct Algorithm Used"},
		{Key: 0x0005, Name: "Bytes Processed"},
		{Key: 0x0006, Name: "Uncorrected Errors"},
		{Key: 0x8000, Name: "Flash Read Commands"},
		{Key: 0x8001, Name: "XOR Recovered"},
		{Key: 0x8002, Name: "Total Corrected Bits"},
	}
	fmt.Fprintln(w, "Read Errors Subpage:")
	printSubpageKV(p, w, kv)
}

func printVerifyErrors(p []byte, subtype uint8, res uint8, w io.Writer) {
	kv := []logpage.KV{
		{Key: 0x0000, Name: "Corrected Without Delay"},
		{Key: 0x0001, Name: "Corrected Maybe Delayed"},
		{Key: 0x0002, Name: "Re-Reads"},
		{Key: 0x0003, Name: "Errors Corrected"},
		{Key: 0x0004, Name: "Correct Algorithm Used"},
		{Key: 0x0005, Name: "Bytes Processed"},
		{Key: 0x0006, Name: "Uncorrected Errors"},
		{Key: 0x8000, Name: "Commands Processed"},
	}
	fmt.Fprintln(w, "Verify Errors Subpage:")
	printSubpageKV(p, w, kv)
}

func printEraseErrors(p []byte, subtype uint8, res uint8, w io.Writer) {
	kv := []logpage.KV{
		{Key: 0x0000, Name: "Corrected Without Delay"},
		{Key: 0x0001, Name: "Corrected Maybe Delayed"},
		{Key: 0x0002, Name: "Re-Erase"},
		{Key: 0x0003, Name: "Errors Corrected"},
		{Key: 0x0004, Name: "Correct Algorithm Used"},
		{Key: 0x0005, Name: "Bytes Processed"},
		{Key: 0x0006, Name: "Uncorrected Errors"},
		{Key: 0x8000, Name: "Flash Erase Commands"},
		{Key: 0x8001, Name: "Mfg Defect Count"},
		{Key: 0x8002, Name: "Grown Defect Count"},
		{Key: 0x8003, Name: "Erase Count -- User"},
		{Key: 0x8004, Name: "Erase Count -- System"},
	}
	fmt.Fprintln(w, "Erase Errors Subpage:")
	printSubpageKV(p, w, kv)
}

// Self test history: 20 byte entries, 4 byte parameter header plus a 0x10
// byte payload. A zero length field is the end marker.
const selfTestEntrySize = 20

func printSelfTest(p []byte, subtype uint8, res uint8, w io.Writer) {
	fmt.Fprintln(w, "Self Test Subpage:")
	cur := logpage.NewCursor(p)
	for i := 0; i < len(p)/selfTestEntrySize; i++ {
		entry, err := cur.Bytes(selfTestEntrySize)
		if err != nil {
			return
		}
		code := binary.LittleEndian.Uint16(entry)
		// entry[2] is fixed flags, ignore
		if entry[3] == 0 { // Last entry is zero length
			break
		}
		if entry[3] != 0x10 {
			fmt.Fprintln(w, "Bad length for self test report")
			return
		}
		hrs := binary.LittleEndian.Uint16(entry[6:])
		lba := binary.LittleEndian.Uint32(entry[8:])
		fmt.Fprintf(w, "  %-30s: %d\n", "Recent Test", code)
		fmt.Fprintf(w, "    %-28s: %#x\n", "Self-Test Results", entry[4]&0xf)
		fmt.Fprintf(w, "    %-28s: %#x\n", "Self-Test Code", entry[4]>>5&0x7)
		fmt.Fprintf(w, "    %-28s: %#x\n", "Self-Test Number", entry[5])
		fmt.Fprintf(w, "    %-28s: %d\n", "Total Power On Hrs", hrs)
		fmt.Fprintf(w, "    %-28s: %#x (%d)\n", "LBA", lba, lba)
		fmt.Fprintf(w, "    %-28s: %#x\n", "Sense Key", entry[12]&0xf)
		fmt.Fprintf(w, "    %-28s: %#x\n", "Additional Sense Code", entry[13])
		fmt.Fprintf(w, "    %-28s: %#x\n", "Additional Sense Qualifier", entry[14])
		fmt.Fprintf(w, "    %-28s: %#x\n", "Vendor Specific Detail", entry[15])
	}
}

// Background media scan: a validated 20 byte header followed by 24 byte
// retirement records. Retirement records carry a fixed 8 byte signature; a
// record that fails the signature check is reported corrupt on its own and
// the scan continues with the next one.
const (
	scanHeaderSize     = 20
	retirementSize     = 24
	retirementParamLen = 0x14
)

var retirementSignature = [8]byte{0x41, 0x0b, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00}

func printBackgroundScan(p []byte, subtype uint8, res uint8, w io.Writer) {
	fmt.Fprintln(w, "Background Media Scan Subpage:")

	cur := logpage.NewCursor(p)
	hdr, err := cur.Bytes(scanHeaderSize)
	if err != nil {
		fmt.Fprintln(w, "short background scan header")
		return
	}
	code := binary.LittleEndian.Uint16(hdr)
	if hdr[3] != 0x10 {
		fmt.Fprintln(w, "Bad length for background scan header")
		return
	}
	if code != 0 {
		fmt.Fprintf(w, "Expected code 0, found code %#x\n", code)
		return
	}
	pom := binary.LittleEndian.Uint32(hdr[4:])
	status := hdr[9]
	nscan := binary.LittleEndian.Uint16(hdr[10:])
	progress := binary.LittleEndian.Uint16(hdr[12:])

	fmt.Fprintf(w, "  %-30s: %d\n", "Power On Minutes", pom)
	fmt.Fprintf(w, "  %-30s: %x (%s)\n", "BMS Status", status, scanStatusName(status))
	fmt.Fprintf(w, "  %-30s: %d\n", "Number of BMS", nscan)
	fmt.Fprintf(w, "  %-30s: %d\n", "Progress Current BMS", progress)

	fmt.Fprintf(w, "  %-30s: %d\n", "BMS retirements", cur.Remaining()/retirementSize)
	for cur.Remaining() >= retirementSize {
		rec, err := cur.Bytes(retirementSize)
		if err != nil {
			return
		}
		code := binary.LittleEndian.Uint16(rec)
		if rec[3] != retirementParamLen {
			fmt.Fprintln(w, "Bad length parameter")
			return
		}
		// The spec sheet says bytes 8..15 are hard coded; if so, trust the
		// NAND retirement field, otherwise only this record is suspect.
		if [8]byte(rec[8:16]) == retirementSignature {
			nand := binary.LittleEndian.Uint32(rec[20:])
			fmt.Fprintf(w, "  %-30s: %d\n", "Retirement number", code)
			fmt.Fprintf(w, "    %-28s: %#x\n", "NAND (C/T)BBBPPP", nand)
		} else {
			fmt.Fprintf(w, "Parameter %#x entry corrupt\n", code)
		}
	}
}

func scanStatusName(status uint8) string {
	switch status {
	case 0:
		return "idle"
	case 1:
		return "active"
	case 8:
		return "suspended"
	}
	return "unknown"
}

func printEraseCounts(p []byte, subtype uint8, res uint8, w io.Writer) {
	// Known drives don't export this subpage, so there is nothing to decode
	fmt.Fprintf(w, "Erase counts subpage not decoded (type %#x, %d bytes)\n", subtype, len(p))
}

func printTempHistory(p []byte, subtype uint8, res uint8, w io.Writer) {
	fmt.Fprintln(w, "Temperature History:")
	cur := logpage.NewCursor(p)
	for _, label := range []string{
		"Current Temperature",
		"Reference Temperature",
		"Maximum Temperature",
		"Minimum Temperature",
	} {
		c, err := cur.Byte()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "  %-30s: %d C\n", label, c)
	}
	for _, label := range []string{
		"Max Temperature Time",
		"Over Temperature Duration",
		"Min Temperature Time",
	} {
		min, err := cur.LE32()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "  %-30s: %d:%02d:00\n", label, min/60, min%60)
	}
}

func printSSDPerf(p []byte, subtype uint8, res uint8, w io.Writer) {
	labels := []string{
		"Host Read Commands",
		"Host Read Blocks",
		"Host Cache Read Hits Commands",
		"Host Cache Read Hits Blocks",
		"Host Read Commands Stalled",
		"Host Write Commands",
		"Host Write Blocks",
		"Host Write Odd Start Commands",
		"Host Write Odd End Commands",
		"Host Write Commands Stalled",
		"NAND Read Commands",
		"NAND Read Blocks",
		"NAND Write Commands",
		"NAND Write Blocks",
		"NAND Read Before Writes",
	}
	fmt.Fprintf(w, "SSD Performance Subpage Type %d:\n", res)
	cur := logpage.NewCursor(p)
	for _, label := range labels {
		val, err := cur.LE64()
		if err != nil {
			return
		}
		fmt.Fprintf(w, "  %-30s: %d\n", label, val)
	}
}

func printFirmwareLoad(p []byte, subtype uint8, res uint8, w io.Writer) {
	fmt.Fprintln(w, "Firmware Load Subpage:")
	cur := logpage.NewCursor(p)
	count, err := cur.LE32()
	if err != nil {
		return
	}
	fmt.Fprintf(w, "  %-30s: %d\n", "Firmware Downloads", count)
}
