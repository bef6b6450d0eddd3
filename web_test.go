// web_test.go
package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvmeDiags/logpage"
	"nvmeDiags/logpage/datafile"
)

func TestGetActionAndFilename(t *testing.T) {
	req := httptest.NewRequest("GET", "http://localhost:8000/show/tmp/dumps/health.bin", nil)
	action, filename := GetActionAndFilename(req)
	assert.Equal(t, "show", action)
	assert.Equal(t, filepath.FromSlash("/tmp/dumps/health.bin"), filename)

	req = httptest.NewRequest("GET", "http://localhost:8000/", nil)
	action, filename = GetActionAndFilename(req)
	assert.Equal(t, "", action)
	assert.Equal(t, "", filename)

	req = httptest.NewRequest("GET", "http://localhost:8000/uploader", nil)
	action, _ = GetActionAndFilename(req)
	assert.Equal(t, "uploader", action)
}

func TestAbsPathToOpen(t *testing.T) {
	url := absPathToOpen(string(os.PathSeparator) + "dumps" + string(os.PathSeparator) + "a.bin")
	assert.Contains(t, url, "/show/")
	assert.Contains(t, url, "a.bin")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	url = absPathToOpen("b.bin")
	assert.Contains(t, url, cwd)
}

// A stored data file decodes into a report buffer the display template can show
func TestDecodeToBuffer(t *testing.T) {
	name := filepath.Join(t.TempDir(), "health.bin")

	image := make([]byte, 512)
	image[3] = 77 // available spare

	out, err := os.Create(name)
	require.NoError(t, err)
	hdr := datafile.DataFileHdr{PageID: logpage.PageHealth, NSID: 0xffffffff, MaxErrorLogEntries: 63}
	require.NoError(t, datafile.Write(out, hdr, image))
	require.NoError(t, out.Close())

	var body bytes.Buffer
	require.NoError(t, decodeToBuffer(name, false, &body))
	assert.Contains(t, body.String(), "SMART/Health Information Log")
	assert.Contains(t, body.String(), "Available spare:                77\n")

	body.Reset()
	require.NoError(t, decodeToBuffer(name, true, &body))
	assert.Contains(t, body.String(), "000: 00 00 ")
}
