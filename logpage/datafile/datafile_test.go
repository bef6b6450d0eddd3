// datafile_test.go
package datafile

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvmeDiags/logpage"
	_ "nvmeDiags/logpage/health"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	hdr := DataFileHdr{
		PageID:             logpage.PageHealth,
		NSID:               0xffffffff,
		MaxErrorLogEntries: 63,
	}

	var file bytes.Buffer
	require.NoError(t, Write(&file, hdr, payload))

	f, err := Load(&file)
	require.NoError(t, err)
	assert.Equal(t, uint32(HeaderMagic), f.Hdr.HeaderMagic)
	assert.Equal(t, uint32(logpage.PageHealth), f.Hdr.PageID)
	assert.Equal(t, uint32(0xffffffff), f.Hdr.NSID)
	assert.Equal(t, uint32(63), f.Hdr.MaxErrorLogEntries)
	assert.Equal(t, uint32(len(payload)), f.Hdr.ImageSize)
	assert.Equal(t, payload, f.Payload)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	var file bytes.Buffer
	require.NoError(t, Write(&file, DataFileHdr{}, nil))
	raw := file.Bytes()
	binary.LittleEndian.PutUint32(raw, 0x12345678)

	_, err := Load(bytes.NewReader(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a log page data file")
}

func TestLoadRejectsShortImage(t *testing.T) {
	var file bytes.Buffer
	require.NoError(t, Write(&file, DataFileHdr{}, make([]byte, 100)))
	raw := file.Bytes()[:file.Len()-40]

	_, err := Load(bytes.NewReader(raw))
	assert.Error(t, err)
}

func TestReadLogPage(t *testing.T) {
	f := &File{
		Hdr:     DataFileHdr{PageID: logpage.PageHealth, ImageSize: 4},
		Payload: []byte{1, 2, 3, 4},
	}

	// A dump shorter than the requested buffer reads as zero filled
	buf := make([]byte, 8)
	require.NoError(t, f.ReadLogPage(logpage.PageHealth, 0xffffffff, buf))
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0, 0, 0}, buf)

	err := f.ReadLogPage(logpage.PageFirmwareSlot, 0xffffffff, buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file holds page")
}

// End to end: a wrapped health page dump decodes through the standard
// pipeline using the file's own page id
func TestDecodeDataFile(t *testing.T) {
	image := make([]byte, 512)
	binary.LittleEndian.PutUint16(image[1:], 310)
	image[3] = 90

	var file bytes.Buffer
	hdr := DataFileHdr{PageID: logpage.PageHealth, NSID: 0xffffffff, MaxErrorLogEntries: 63}
	require.NoError(t, Write(&file, hdr, image))

	f, err := Load(&file)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Decode(f, false, &out))
	report := out.String()

	assert.Contains(t, report, "SMART/Health Information Log\n")
	assert.Contains(t, report, "Temperature:                    310 K, 36.85 C, 98.33 F\n")
	assert.Contains(t, report, "Available spare:                90\n")
}

// Hex mode overrides the registered decoder
func TestDecodeHexMode(t *testing.T) {
	var file bytes.Buffer
	hdr := DataFileHdr{PageID: logpage.PageHealth}
	require.NoError(t, Write(&file, hdr, make([]byte, 512)))

	f, err := Load(&file)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Decode(f, true, &out))
	assert.NotContains(t, out.String(), "SMART/Health Information Log")
	assert.Contains(t, out.String(), "000: 00 00 ")
}
