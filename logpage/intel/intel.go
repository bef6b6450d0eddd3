// intel.go
//
// Methods for decoding Intel vendor log pages
//
// Two pages: the temperature statistics page (one fixed struct) and the
// additional SMART attribute page (fixed stride key/value records). Layouts
// follow the SSD DC P3700 product specification.
package intel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"nvmeDiags/logpage"
)

type tempStatsPage struct {
	Current          uint64
	OvertempFlagLast uint64
	OvertempFlagLife uint64
	MaxTemp          uint64
	MinTemp          uint64
	Rsvd             [5]uint64
	MaxOperTemp      uint64
	MinOperTemp      uint64
	EstOffset        uint64
}

type TempStatsDecoder struct{}

var tempStatsDecoder TempStatsDecoder

type AddSmartDecoder struct{}

var addSmartDecoder AddSmartDecoder

// Register decoder functions
func init() {
	logpage.RegisterPage(logpage.PageIntelTempStats, uint32(binary.Size(tempStatsPage{})), &tempStatsDecoder)
	logpage.RegisterPage(logpage.PageIntelAddSmart, logpage.DefaultSize, &addSmartDecoder)
}

func (ts *TempStatsDecoder) Decode(buf []byte, w io.Writer) error {
	var page tempStatsPage
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &page); err != nil {
		fmt.Fprintln(w, "short temperature stats page:", err)
		return err
	}

	fmt.Fprintln(w, "Intel Temperature Log")
	fmt.Fprintln(w, "=====================")

	fmt.Fprintf(w, "Current:                        %s\n", logpage.Temperature(uint16(page.Current)))
	fmt.Fprintf(w, "Overtemp Last Flags             %#x\n", page.OvertempFlagLast)
	fmt.Fprintf(w, "Overtemp Lifetime Flags         %#x\n", page.OvertempFlagLife)
	fmt.Fprintf(w, "Max Temperature                 %s\n", logpage.Temperature(uint16(page.MaxTemp)))
	fmt.Fprintf(w, "Min Temperature                 %s\n", logpage.Temperature(uint16(page.MinTemp)))
	fmt.Fprintf(w, "Max Operating Temperature       %s\n", logpage.Temperature(uint16(page.MaxOperTemp)))
	fmt.Fprintf(w, "Min Operating Temperature       %s\n", logpage.Temperature(uint16(page.MinOperTemp)))
	fmt.Fprintf(w, "Estimated Temperature Offset:   %d C/K\n", page.EstOffset)
	return nil
}

// Additional SMART page geometry: 12 byte records; a record starting below
// byte 150 is populated and may run past it into the fetched buffer.
const (
	attrRecordSize = 12
	attrRegionEnd  = 150
)

// Attribute keys with special raw-field interpretations.
const (
	attrWearLeveling    = 0xad
	attrTimedMediaWear  = 0xe2
	attrThermalThrottle = 0xea
)

var addSmartNames = []logpage.KV{
	{Key: 0xab, Name: "Program Fail Count"},
	{Key: 0xac, Name: "Erase Fail Count"},
	{Key: 0xad, Name: "Wear Leveling Count"},
	{Key: 0xb8, Name: "End to End Error Count"},
	{Key: 0xc7, Name: "CRC Error Count"},
	{Key: 0xe2, Name: "Timed: Media Wear"},
	{Key: 0xe3, Name: "Timed: Host Read %"},
	{Key: 0xe4, Name: "Timed: Elapsed Time"},
	{Key: 0xea, Name: "Thermal Throttle Status"},
	{Key: 0xf0, Name: "Retry Buffer Overflows"},
	{Key: 0xf3, Name: "PLL Lock Loss Count"},
	{Key: 0xf4, Name: "NAND Bytes Written"},
	{Key: 0xf5, Name: "Host Bytes Written"},
}

// Record layout:
//
//	[0]     key
//	[1,2]   reserved
//	[3]     normalized value
//	[4]     reserved
//	[5..10] little endian raw value (or other representations)
//	[11]    reserved
func (as *AddSmartDecoder) Decode(buf []byte, w io.Writer) error {
	fmt.Fprintln(w, "Additional SMART Data Log")
	fmt.Fprintln(w, "=========================")

	cur := logpage.NewCursor(buf)
	for cur.Offset() < attrRegionEnd {
		rec, err := cur.Bytes(attrRecordSize)
		if err != nil {
			break
		}
		key := rec[0]
		if key == 0 {
			// Unpopulated slot, nothing recorded here
			continue
		}
		name := logpage.KVLookup(addSmartNames, uint32(key))
		normalized := rec[3]
		switch key {
		case attrWearLeveling:
			fmt.Fprintf(w, "%-32s: %3d min: %d max: %d ave: %d\n", name, normalized,
				binary.LittleEndian.Uint16(rec[5:]),
				binary.LittleEndian.Uint16(rec[7:]),
				binary.LittleEndian.Uint16(rec[9:]))
		case attrTimedMediaWear:
			fmt.Fprintf(w, "%-32s: %3d %.3f%%\n", name, normalized,
				float64(logpage.LE48(rec[5:]))/1024.0)
		case attrThermalThrottle:
			fmt.Fprintf(w, "%-32s: %3d %d%% %d times\n", name, normalized,
				rec[5], binary.LittleEndian.Uint32(rec[6:]))
		default:
			fmt.Fprintf(w, "%-32s: %3d %d\n", name, normalized, logpage.LE48(rec[5:]))
		}
	}
	return nil
}
