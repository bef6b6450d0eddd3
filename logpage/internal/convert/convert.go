// convert.go
// Wrap a raw log page dump in a data file header, because on command line flags
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"nvmeDiags/logpage/datafile"
)

const shorthand = " (shorthand)"

var dumpFilename string
var pageID uint
var nsid uint
var maxErrorLogEntries uint

// Tie the command-line flags to their variables and set usage info
func init() {
	const (
		defaultFilename = ""
		usage           = "A raw log page dump filename."
	)
	flag.StringVar(&dumpFilename, "d", defaultFilename, usage+shorthand)
	flag.StringVar(&dumpFilename, "dumpFilename", defaultFilename, usage)
}

func init() {
	const (
		defaultPage = 0
		usage       = "The log page id the dump was fetched from"
	)
	flag.UintVar(&pageID, "p", defaultPage, usage+shorthand)
	flag.UintVar(&pageID, "pageId", defaultPage, usage)
}

func init() {
	const (
		defaultNsid = 0xffffffff
		usage       = "The namespace id the dump was fetched for"
	)
	flag.UintVar(&nsid, "n", defaultNsid, usage+shorthand)
	flag.UintVar(&nsid, "nsid", defaultNsid, usage)
}

func init() {
	const (
		defaultEntries = 63
		usage          = "The controller's max error log entries (ELPE)"
	)
	flag.UintVar(&maxErrorLogEntries, "e", defaultEntries, usage+shorthand)
	flag.UintVar(&maxErrorLogEntries, "elpe", defaultEntries, usage)
}

func convertDumpFile(filename string, convertFilename string) {
	reader, err := os.Open(filename)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer reader.Close()

	writer, err := os.Create(convertFilename)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer writer.Close()
	fmt.Println("Convert to", convertFilename)

	convertFile(reader, writer)
}

// convertFile reads the whole dump into memory, and writes out a data file
// header followed by the original image
func convertFile(reader io.Reader, writer io.Writer) {
	bs, err := io.ReadAll(reader)
	if err != nil {
		fmt.Println(err)
		return
	}

	hdr := datafile.DataFileHdr{
		PageID:             uint32(pageID),
		NSID:               uint32(nsid),
		MaxErrorLogEntries: uint32(maxErrorLogEntries),
	}

	if err := datafile.Write(writer, hdr, bs); err != nil {
		fmt.Println(err)
		return
	}
}

func main() {
	// Define the flags

	flag.Parse()

	var convertFileSplit []string = strings.Split(dumpFilename, ".")
	convertFileSplit[0] += ".bin"
	var convertFilename string = strings.Join(convertFileSplit, ".")

	fmt.Println("Convert", dumpFilename, "to", convertFilename, "with page", pageID)

	convertDumpFile(dumpFilename, convertFilename)
}
