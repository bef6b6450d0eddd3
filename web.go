// *** Webserver ***
//
// Main webserver methods for nvmeDiags
//
// Overall plan
//
// The upload directory collects log page data files (.bin, produced by the
// convert tool or scripts on the target system). The index lists them newest
// first; clicking one decodes it in memory and shows the report, with a raw
// hex alternative for when the decoder is suspected of lying. Reports can be
// pushed to a JIRA issue from the report page.
//
// Decoding runs per request in the handler's goroutine; the decode engine
// shares nothing between decodes, so no locking is needed around it. The
// mutex only guards upload directory housekeeping.

package main

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"nvmeDiags/logpage/datafile"

	"github.com/rs/zerolog/log"
)

var globalWebMutex sync.Mutex

var uploadDir string

// fileDateOrder implements sort.Interface for []os.FileInfo based on
// the time.Time field.
type fileDateOrder []os.FileInfo

// Forward request for length
func (p fileDateOrder) Len() int {
	return len(p)
}

// Define compare - we want our list to be most recent time first
func (p fileDateOrder) Less(i, j int) bool {
	return p[i].ModTime().After(p[j].ModTime())
}

// Define swap over an array
func (p fileDateOrder) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

// Webpage templates
type templateHandler struct {
	once  sync.Once // Only instantiated once
	name  string
	text  string
	templ *template.Template
}

// Data structure passed to our HTML templates
type webPageInfo struct {
	// Note elements must start with a Capital letter to be accessed from a template
	Body       bytes.Buffer
	Filename   string // full pathname of the data file being shown
	Dirlist    fileDateOrder
	Version    string
	UploadDir  string
	HexMode    bool
	JiraCookie JIRA_LOGIN_STATE
}

const mainTemplateText = `<html>
<head><title>nvmeDiags</title></head>
<body>
<h1>nvmeDiags {{.Version}}</h1>
<h2>Log page dumps in {{.UploadDir}}</h2>
<ul>
{{range .Dirlist}}<li><a href="/show/{{$.UploadDir}}/{{.Name}}">{{.Name}}</a>
 ({{.Size}} bytes, {{.ModTime.Format "2006-01-02 15:04:05"}})
 [<a href="/hex/{{$.UploadDir}}/{{.Name}}">hex</a>]
 [<a href="/save/{{$.UploadDir}}/{{.Name}}">save</a>]
 [<a href="/del/{{$.UploadDir}}/{{.Name}}">delete</a>]</li>
{{end}}</ul>
<h2>Upload a dump</h2>
<form action="/uploader" method="post" enctype="multipart/form-data">
<input type="file" name="dumpFile"><input type="submit" value="Upload">
</form>
{{if .JiraCookie.IsCookieValid}}<p>JIRA: logged in as {{.JiraCookie.GetUsername}}</p>
{{else}}<h2>JIRA login</h2>
<form action="/jiralogin" method="post">
User <input type="text" name="username"> Password <input type="password" name="password">
<input type="submit" value="Login">
</form>
{{end}}</body>
</html>
`

const displayTemplateText = `<html>
<head><title>{{.Filename}}</title></head>
<body>
<p><a href="/">Index</a>
{{if .HexMode}}| <a href="/show/{{.Filename}}">decoded</a>{{else}}| <a href="/hex/{{.Filename}}">hex</a>{{end}}</p>
<pre>
{{.Body}}</pre>
{{if .JiraCookie.IsCookieValid}}<h2>Post report to JIRA</h2>
<form action="/jira/" method="post">
<input type="hidden" name="filename" value="{{.Filename}}">
Issue <input type="text" name="bugid"> Comment <input type="text" name="comment">
<input type="submit" value="Post">
</form>
{{end}}</body>
</html>
`

func GetActionAndFilename(r *http.Request) (action string, filename string) {
	if r.URL.Path != "" {
		segs := strings.SplitN(r.URL.Path, "/", 3)
		if len(segs) > 1 {
			action = segs[1]
		}
		if len(segs) > 2 {

			// On Windows, the path will be an absolute pathname, starting with a drive letter.
			// On UNIX based systems (Mac, Linux etc), the path will also be an absolute path, starting with /
			// however, the / has been removed by the split operation. We can't just add it back in, because that
			// makes no sense on Windows
			// We can determine if the file is absolute - if not, we can infer its a UNIX system, and add a leading /
			// alternatively use runtime.GOOS

			filename = filepath.Join(segs[2])

			if !filepath.IsAbs(filename) {
				filename = string(os.PathSeparator) + filename
			}
		}
	}

	log.Debug().Str("path", r.URL.Path).Str("action", action).Str("file", filename).Msg("web request")

	return action, filename
}

// decodeToBuffer loads one data file and renders its report into memory
func decodeToBuffer(filename string, hexMode bool, body *bytes.Buffer) error {
	reader, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer reader.Close()

	f, err := datafile.Load(reader)
	if err != nil {
		return err
	}

	return datafile.Decode(f, hexMode, body)
}

// Serve HTML pages
//
// Method associated with the templateHandler struct

func (t *templateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Instantiate the templates - this will only be done once
	t.once.Do(func() {
		t.templ = template.Must(template.New(t.name).Parse(t.text))
	})

	// Work out what page is being handled
	action, filename := GetActionAndFilename(r)

	// Populate variables we want to pass to the webpage
	var webpage webPageInfo
	webpage.Version = versionString
	webpage.JiraCookie = JiraCookie
	webpage.UploadDir = uploadDir

	switch action {
	case "show", "hex":
		webpage.Filename = filename
		webpage.HexMode = action == "hex"

		if err := decodeToBuffer(filename, webpage.HexMode, &webpage.Body); err != nil {
			log.Error().Err(err).Str("file", filename).Msg("decode failed")
			io.WriteString(w, err.Error())
			return
		}

	case "save":
		// Open the requested file and stream it back as a download

		reader, err := os.Open(filename)
		if err != nil {
			log.Error().Err(err).Str("file", filename).Msg("failed to open file for saving")
			io.WriteString(w, err.Error())
			return
		}
		defer reader.Close()

		savename := filepath.Base(filename)

		// copy the relevant headers. Content-Type and Content-Length should be based on the file
		w.Header().Set("Content-Disposition", "attachment; filename="+savename)

		ext := filepath.Ext(filename)
		w.Header().Set("Content-Type", mime.TypeByExtension(ext))

		fileinfo, err := os.Stat(filename)
		if err == nil {
			w.Header().Set("Content-Length", strconv.FormatInt(fileinfo.Size(), 10))
		}
		// stream the body to the client without fully loading it into memory
		io.Copy(w, reader)
		return

	case "del":
		globalWebMutex.Lock()
		err := os.Remove(filename)
		globalWebMutex.Unlock()
		if err != nil {
			log.Error().Err(err).Str("file", filename).Msg("failed to delete dump")
			io.WriteString(w, err.Error())
			return
		}
		log.Info().Str("file", filename).Msg("deleted")

		w.Header()["Location"] = []string{"/"}
		w.WriteHeader(http.StatusTemporaryRedirect)
		return

	case "":
		// Generate a list of previously uploaded dumps, most recent first

		entries, err := os.ReadDir(uploadDir)
		if err != nil {
			log.Error().Err(err).Msg("failed to read upload directory")
			io.WriteString(w, err.Error())
			return
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			webpage.Dirlist = append(webpage.Dirlist, info)
		}
		sort.Sort(webpage.Dirlist)

	default:
		w.WriteHeader(http.StatusNotFound) // 404
		log.Warn().Str("action", action).Stringer("url", r.URL).Msg("no such page")
		fmt.Fprintf(w, "No such page: %s\n", r.URL)
		return
	}
	t.templ.Execute(w, &webpage)
}

// Handle upload of files
//
// We don't know the path of the file - just its name, so store it in the
// upload directory and redirect back to the index

func uploaderHandler(w http.ResponseWriter, req *http.Request) {
	file, header, err := req.FormFile("dumpFile")
	if err != nil {
		io.WriteString(w, err.Error())
		return
	}
	log.Info().Str("file", header.Filename).Msg("upload")

	data, err := io.ReadAll(file)
	if err != nil {
		io.WriteString(w, err.Error())
		return
	}

	filename := filepath.Join(uploadDir, filepath.Base(header.Filename))

	globalWebMutex.Lock()
	err = os.WriteFile(filename, data, 0644)
	globalWebMutex.Unlock()
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("failed to store upload")
		io.WriteString(w, err.Error())
		return
	}

	http.Redirect(w, req, "/", http.StatusFound)
}

// Main invocation and configuration of the webserver. Runs as a go routine

func createWebServer() {
	fmt.Println("Webserver start on localhost:" + strconv.Itoa(webServerPort))

	// Ensure we have a location for uploaded dumps

	var err error
	uploadDir, err = filepath.Abs(config.UploadDir)
	if err != nil {
		log.Error().Err(err).Msg("upload dir")
		return
	}
	log.Info().Str("dir", uploadDir).Msg("upload directory")

	if _, err := os.Stat(uploadDir); os.IsNotExist(err) {
		log.Info().Str("dir", uploadDir).Msg("creating upload directory")
		if err = os.Mkdir(uploadDir, 0777); err != nil {
			log.Error().Err(err).Msg("upload dir")
			return
		}
	}

	http.Handle("/", &templateHandler{name: "main", text: mainTemplateText})
	http.Handle("/del/", &templateHandler{name: "main", text: mainTemplateText})
	http.Handle("/save/", &templateHandler{name: "main", text: mainTemplateText})
	http.Handle("/show/", &templateHandler{name: "display", text: displayTemplateText})
	http.Handle("/hex/", &templateHandler{name: "display", text: displayTemplateText})

	http.HandleFunc("/uploader", uploaderHandler)
	http.HandleFunc("/jiralogin", jiraloginHandler)
	http.HandleFunc("/jira/", jirapostHandler)

	log.Fatal().Err(http.ListenAndServe(":"+strconv.Itoa(webServerPort), nil)).Msg("webserver stopped")
}
