// nvmeDiags.go
//
// Decode NVMe log page dumps into readable reports
//
// This utility decodes raw log page buffers fetched from NVMe controllers.
// The buffers themselves arrive as data files produced on the target system
// (see logpage/internal/convert for the wrapper tool); talking to the device
// is the transport's problem, decoding firmware-controlled bytes safely is
// ours.
//
// The decode engine lives in logpage/. Each supported page registers its
// decoder from an init() function, so pulling in a page type is just a blank
// import below. Pages nobody registered still render, as a raw hex dump.
//
// Further improvements
//
// 1. Allow automatic upload of decoded reports to a JIRA ticket (done, via
// the web interface)
//
// 2. Compare reports from the same drive over time - wear trend, error count
// deltas
//
// 3. Decode a whole directory of dumps in one run
package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"flag"
	"fmt"

	"nvmeDiags/logpage/datafile"
	_ "nvmeDiags/logpage/errlog"
	_ "nvmeDiags/logpage/firmware"
	_ "nvmeDiags/logpage/health"
	_ "nvmeDiags/logpage/hgst"
	_ "nvmeDiags/logpage/intel"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/toqueteos/webbrowser"
)

// ------ Flags definitions --------

const shorthand = " (shorthand)"

// dataFilename variable & flag decoder
var dataFilename string

// Tie the command-line flag to the dataFilename variable and set usage info
// We can have multiple init() functions which are called before main()

func init() {
	const (
		defaultFilename = ""
		usage           = "A log page data file to decode (see the convert tool)"
	)
	flag.StringVar(&dataFilename, "f", defaultFilename, usage+shorthand)
	flag.StringVar(&dataFilename, "dataFilename", defaultFilename, usage)
}

var hexMode bool

func init() {
	const usage = "Dump the page as raw hex instead of decoding it"
	flag.BoolVar(&hexMode, "x", false, usage+shorthand)
	flag.BoolVar(&hexMode, "hex", false, usage)
}

var enableWebServer bool
var webServerPort int

func init() {
	const (
		defaultWebServerPort = 8000
		usage                = "Start the report web server"
		usageWS              = "Port to use for the webserver"
	)
	flag.BoolVar(&enableWebServer, "w", false, usage+shorthand)
	flag.BoolVar(&enableWebServer, "web", false, usage)
	flag.IntVar(&webServerPort, "wp", defaultWebServerPort, usageWS+shorthand)
	flag.IntVar(&webServerPort, "webport", defaultWebServerPort, usageWS)
}

var configFilename string

func init() {
	const usage = "Config file (TOML); defaults to nvmeDiags.toml if present"
	flag.StringVar(&configFilename, "c", "", usage+shorthand)
	flag.StringVar(&configFilename, "config", "", usage)
}

// return a web URL where the filename is an absolute path
// if its not an absolute a path, add the CWD to the start
func absPathToOpen(filename string) string {
	if !filepath.IsAbs(filename) {
		dir, err := os.Getwd()
		if err != nil {
			return ""
		}
		filename = dir + string(os.PathSeparator) + filename
	}

	return "http://localhost:" + strconv.Itoa(webServerPort) + "/show/" + filename
}

// flagWasSet reports whether a flag was given explicitly, so the config file
// only fills in values the command line left alone
func flagWasSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func main() {
	// Print the command line
	fmt.Print("nvmeDiags " + versionString)

	for index, value := range os.Args {
		if index != 0 {
			fmt.Print(" ", value)
		}
	}

	fmt.Println()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Handle flags

	flag.Parse()

	config = loadConfig(configFilename)
	if !flagWasSet("wp") && !flagWasSet("webport") && config.WebPort != 0 {
		webServerPort = config.WebPort
	}

	// If we've not been given a data file, see if there's any unconsumed
	// arguments and treat the first as one
	if dataFilename == "" && len(flag.Args()) != 0 {
		dataFilename = flag.Args()[0]
	}

	if dataFilename == "" && !enableWebServer {
		fmt.Println("Missing data file (-f) and web mode (-w) not requested.")
		flag.Usage()
		os.Exit(1)
	}

	var path string

	if dataFilename != "" {
		var decodeFileSplit []string = strings.Split(dataFilename, ".")
		decodeFileSplit[0] += "_txt"
		var decodeFilename string = strings.Join(decodeFileSplit, ".")

		log.Info().Str("file", dataFilename).Str("report", decodeFilename).Msg("decoding data file")

		if err := decodeDataFileReport(dataFilename, decodeFilename); err != nil {
			log.Error().Err(err).Str("file", dataFilename).Msg("decode failed")
			os.Exit(1)
		}
		path = absPathToOpen(dataFilename)
	}

	if enableWebServer {
		// This won't return. For now, we can either process a file via the
		// command line or start the webserver
		go createWebServer()

		if path != "" {
			webbrowser.Open(path)
			log.Info().Str("url", path).Msg("webbrowser open")
		}

		// wait forever
		select {}
	}
}

// decodeDataFileReport decodes one dump into a report file, honoring the
// hex mode flag.
func decodeDataFileReport(filename string, decodeFilename string) error {
	reader, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	f, err := datafile.Load(reader)
	if err != nil {
		return err
	}

	writer, err := os.Create(decodeFilename)
	if err != nil {
		return err
	}
	defer writer.Close()

	return datafile.Decode(f, hexMode, writer)
}
