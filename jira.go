// jira.go
//
// JIRA integration for nvmeDiags
//
// Decoded reports usually end up attached to a drive-qualification ticket,
// so the report page can post a dump straight to an issue with a comment.
// Look at moving to a open-source library, like https://github.com/andygrunwald/go-jira
// although that seems to fairly limited, the basic model looks good.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	Jira "github.com/jasonob/go-jira"
	"github.com/rs/zerolog/log"
)

const defaultJiraBaseURL = "http://jira/jira/"

// Structures which will be turned into JSON request/responses

type JIRA_SESSION struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Internal state to track authenticated user

type JIRA_LOGIN_STATE struct {
	Cookie   JIRA_SESSION
	Username string
}

// Store the cookie we get back from logging into Jira - only in memory for now

var JiraCookie JIRA_LOGIN_STATE

func (s JIRA_LOGIN_STATE) GetCookie() string {
	return s.Cookie.Name + "=" + s.Cookie.Value
}

func (s JIRA_LOGIN_STATE) IsCookieValid() bool {
	return s.Cookie.Name != "" && s.Cookie.Value != ""
}

func (s JIRA_LOGIN_STATE) GetUsername() string {
	return s.Username
}

// Global JIRA client; stores authentication and session information
var jiraClient *Jira.Client

func jiraBaseURL() string {
	if config.JiraBaseURL != "" {
		return config.JiraBaseURL
	}
	return defaultJiraBaseURL
}

func uploadFileToJira(bugId string, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("failed to open file for JIRA upload")
		return err
	}
	defer f.Close()

	uploadname := filepath.Base(filename)

	_, resp, err := jiraClient.Issue.PostAttachment(bugId, f, uploadname)
	if err != nil {
		log.Error().Err(err).Str("issue", bugId).Interface("response", resp).Msg("attachment upload failed")
		return err
	}
	return nil
}

// uploadToJira attaches the dump file to the issue, then posts the comment.
// The comment is skipped if the attachment failed, so a ticket never gets a
// comment referencing a file that isn't there.
func uploadToJira(filename string, bugid string, comment string) error {
	err := uploadFileToJira(bugid, filename)
	if err != nil {
		log.Warn().Str("issue", bugid).Msg("file upload failed - skip posting comment")
		return err
	}

	_, resp, err := jiraClient.Issue.AddComment(bugid, &Jira.Comment{Body: comment})
	if err != nil {
		log.Error().Err(err).Str("issue", bugid).Interface("response", resp).Msg("post comment failed")
		return err
	}

	return nil
}

// Request issue from JIRA.
// Return error and http status if appropriate
func JiraGetIssue(issue string) (*Jira.Issue, error, int) {
	if jiraClient == nil {
		return nil, fmt.Errorf("Not authenticated"), http.StatusUnauthorized
	}
	resp, _, err := jiraClient.Issue.Get(issue)
	if err != nil {
		log.Error().Err(err).Str("issue", issue).Msg("failed to get JIRA issue")
		return nil, err, 0
	}

	for _, a := range resp.Fields.Attachments {
		log.Debug().Str("attachment", a.Filename).Msg("issue attachment")
	}

	return resp, nil, 0
}

// Handle JIRA login
func jiraloginHandler(w http.ResponseWriter, req *http.Request) {
	username := req.FormValue("username")
	password := req.FormValue("password")

	log.Info().Str("username", username).Msg("JIRA login")

	var err error
	jiraClient, err = Jira.NewClient(nil, jiraBaseURL())
	if err != nil {
		log.Error().Err(err).Msg("failed to create JIRA client instance")
	}

	res, err := jiraClient.Authentication.AcquireSessionCookie(username, password)
	if err != nil || res == false {
		log.Warn().Err(err).Bool("result", res).Msg("JIRA session cookie not acquired")
	}

	JiraCookie.Cookie.Name = username
	JiraCookie.Cookie.Value = "placeholder"
	JiraCookie.Username = username

	http.Redirect(w, req, "/", http.StatusFound)
}

// Handle JIRA post
//
// Upload file to specified JIRA bug, and also post comment
//
// Comment is updated to provide a JIRA cross-link to the file that has been uploaded
func jirapostHandler(w http.ResponseWriter, r *http.Request) {
	filename := r.FormValue("filename")

	// Restore the leading separator the form round trip may have dropped;
	// see GetActionAndFilename for the Windows/UNIX reasoning

	if !filepath.IsAbs(filename) {
		filename = string(os.PathSeparator) + filename
	}

	bugid := r.FormValue("bugid")

	// Add a link to the file we're uploading to the comment
	uploadname := filepath.Base(filename)
	comment := r.FormValue("comment") + "\n\n" + "Uploaded log page dump: [^" + uploadname + "]"

	log.Info().Str("file", filename).Str("issue", bugid).Msg("JIRA post")

	// We could fail if we're not logged in (don't have a cookie)

	err := uploadToJira(filename, bugid, comment)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Str("issue", bugid).Msg("JIRA upload failed")
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
