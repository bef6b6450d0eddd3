// intel_test.go
package intel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvmeDiags/logpage"
)

func TestTempStatsDecode(t *testing.T) {
	buf := make([]byte, 104)
	binary.LittleEndian.PutUint64(buf[0:], 310)     // current
	binary.LittleEndian.PutUint64(buf[8:], 0x1)     // overtemp last
	binary.LittleEndian.PutUint64(buf[16:], 0x3)    // overtemp lifetime
	binary.LittleEndian.PutUint64(buf[24:], 350)    // max
	binary.LittleEndian.PutUint64(buf[32:], 290)    // min
	binary.LittleEndian.PutUint64(buf[80:], 358)    // max operating
	binary.LittleEndian.PutUint64(buf[88:], 273)    // min operating
	binary.LittleEndian.PutUint64(buf[96:], 5)      // estimated offset

	var out bytes.Buffer
	var dec TempStatsDecoder
	require.NoError(t, dec.Decode(buf, &out))
	report := out.String()

	assert.Contains(t, report, "Intel Temperature Log\n")
	assert.Contains(t, report, "Current:                        "+logpage.Temperature(310)+"\n")
	assert.Contains(t, report, "Overtemp Last Flags             0x1\n")
	assert.Contains(t, report, "Overtemp Lifetime Flags         0x3\n")
	assert.Contains(t, report, "Max Temperature                 "+logpage.Temperature(350)+"\n")
	assert.Contains(t, report, "Min Temperature                 "+logpage.Temperature(290)+"\n")
	assert.Contains(t, report, "Max Operating Temperature       "+logpage.Temperature(358)+"\n")
	assert.Contains(t, report, "Estimated Temperature Offset:   5 C/K\n")
}

func TestTempStatsShortBuffer(t *testing.T) {
	var out bytes.Buffer
	var dec TempStatsDecoder
	assert.Error(t, dec.Decode(make([]byte, 50), &out))
}

// putAttr fills one 12 byte attribute record at off
func putAttr(buf []byte, off int, key byte, normalized byte, raw []byte) {
	rec := buf[off : off+attrRecordSize]
	rec[0] = key
	rec[3] = normalized
	copy(rec[5:11], raw)
}

func TestAddSmartDecode(t *testing.T) {
	buf := make([]byte, logpage.DefaultSize)

	// Wear leveling carries min/max/ave 16-bit values
	putAttr(buf, 0, attrWearLeveling, 100, []byte{0x05, 0x00, 0x0a, 0x00, 0x07, 0x00})
	// Timed media wear is a fraction of 1024 percent
	wear := make([]byte, 6)
	binary.LittleEndian.PutUint32(wear, 1536)
	putAttr(buf, 12, attrTimedMediaWear, 100, wear)
	// Thermal throttle is a percentage and an event count
	throttle := []byte{25, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(throttle[1:5], 3)
	putAttr(buf, 24, attrThermalThrottle, 99, throttle)
	// Plain counter
	count := make([]byte, 6)
	binary.LittleEndian.PutUint32(count, 42)
	putAttr(buf, 36, 0xab, 100, count)
	// Unknown key still renders through the hex fallback name
	putAttr(buf, 48, 0x77, 88, count)
	// Slot at 60 left zero: unpopulated, skipped

	var out bytes.Buffer
	var dec AddSmartDecoder
	require.NoError(t, dec.Decode(buf, &out))
	report := out.String()

	assert.Contains(t, report, "Additional SMART Data Log\n")
	assert.Contains(t, report,
		fmt.Sprintf("%-32s: %3d min: %d max: %d ave: %d\n", "Wear Leveling Count", 100, 5, 10, 7))
	assert.Contains(t, report,
		fmt.Sprintf("%-32s: %3d %.3f%%\n", "Timed: Media Wear", 100, 1.5))
	assert.Contains(t, report,
		fmt.Sprintf("%-32s: %3d %d%% %d times\n", "Thermal Throttle Status", 99, 25, 3))
	assert.Contains(t, report,
		fmt.Sprintf("%-32s: %3d %d\n", "Program Fail Count", 100, 42))
	assert.Contains(t, report,
		fmt.Sprintf("%-32s: %3d %d\n", "Attribute 0x77", 88, 42))
}

// The last populated record starts at byte 144 and runs past the region end
// into the fetched buffer; it must decode. Records starting at or beyond the
// region end are unpopulated and must be ignored even if they carry a key.
func TestAddSmartRegionEnd(t *testing.T) {
	buf := make([]byte, logpage.DefaultSize)
	count := make([]byte, 6)
	binary.LittleEndian.PutUint32(count, 1)
	putAttr(buf, 0, 0xab, 100, count)

	written := make([]byte, 6)
	binary.LittleEndian.PutUint32(written, 777)
	putAttr(buf, 144, 0xf5, 100, written)

	putAttr(buf, 156, 0xc7, 100, count) // past byte 150

	var out bytes.Buffer
	var dec AddSmartDecoder
	require.NoError(t, dec.Decode(buf, &out))
	assert.Contains(t, out.String(), "Program Fail Count")
	assert.Contains(t, out.String(),
		fmt.Sprintf("%-32s: %3d %d\n", "Host Bytes Written", 100, 777))
	assert.NotContains(t, out.String(), "CRC Error Count")
}

// A buffer shorter than one record produces an empty but clean report
func TestAddSmartShortBuffer(t *testing.T) {
	var out bytes.Buffer
	var dec AddSmartDecoder
	require.NoError(t, dec.Decode(make([]byte, 5), &out))
	assert.Contains(t, out.String(), "Additional SMART Data Log\n")
}

func TestIntelPagesRegistered(t *testing.T) {
	_, size, ok := logpage.Lookup(logpage.PageIntelTempStats)
	require.True(t, ok)
	assert.Equal(t, uint32(104), size)

	_, size, ok = logpage.Lookup(logpage.PageIntelAddSmart)
	require.True(t, ok)
	assert.Equal(t, uint32(logpage.DefaultSize), size)
}
