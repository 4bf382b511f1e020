// Package sources turns the raw source records returned with an answer into
// a deduplicated, display-ready list with knowledge-base links.
//
// Everything here is pure: no I/O, no shared state, safe for concurrent use.
package sources

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	DefaultViewBase     = "https://resource.digital.thermofisher.com/kb/article.aspx?n="
	DefaultDownloadBase = "/download_kb?kb="

	kbIDWidth = 9
)

// nameKeys are checked in order when resolving a record's display name.
var nameKeys = []string{"source", "title", "file", "filename"}

var kbPattern = regexp.MustCompile(`(?i)KB[_-]?(\d{3,})`)

// Record is one raw source entry as decoded from the backend JSON.
type Record map[string]interface{}

// Annotated is a unique source ready for display. KBID, ViewURL and
// DownloadURL are either all set or all empty.
type Annotated struct {
	DisplayName string `json:"displayName"`
	KBID        string `json:"kbId,omitempty"`
	ViewURL     string `json:"viewUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

func (a Annotated) HasKB() bool {
	return a.KBID != ""
}

// Annotator builds links against configurable bases.
type Annotator struct {
	ViewBase     string
	DownloadBase string
}

// NewAnnotator falls back to the default bases for empty arguments.
func NewAnnotator(viewBase, downloadBase string) *Annotator {
	if viewBase == "" {
		viewBase = DefaultViewBase
	}
	if downloadBase == "" {
		downloadBase = DefaultDownloadBase
	}
	return &Annotator{ViewBase: viewBase, DownloadBase: downloadBase}
}

var defaultAnnotator = NewAnnotator("", "")

// Annotate dedupes records by display name, keeping first occurrences in
// input order, and attaches KB links where the name embeds a KB number.
func Annotate(records []Record) []Annotated {
	return defaultAnnotator.Annotate(records)
}

func (a *Annotator) Annotate(records []Record) []Annotated {
	seen := make(map[string]struct{}, len(records))
	out := make([]Annotated, 0, len(records))

	for _, rec := range records {
		name := DisplayName(rec)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, a.annotateName(name))
	}
	return out
}

// AnnotateName builds the entry for a single display name.
func (a *Annotator) AnnotateName(name string) Annotated {
	return a.annotateName(name)
}

func (a *Annotator) annotateName(name string) Annotated {
	ann := Annotated{DisplayName: name}
	if id, ok := ExtractKBID(name); ok {
		ann.KBID = id
		ann.ViewURL = a.ViewBase + url.QueryEscape(id)
		ann.DownloadURL = a.DownloadBase + url.QueryEscape(id)
	}
	return ann
}

// DisplayName returns the first non-null, non-empty value among source,
// title, file and filename.
func DisplayName(rec Record) string {
	for _, key := range nameKeys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s == "" {
				continue
			}
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

// ExtractKBID finds the first KB<sep><digits> run (3+ digits, case
// insensitive) in name and normalizes it to a 9-character zero-padded id.
//
// Leading zeros are stripped before padding, except that an all-zero run is
// kept as is. Runs longer than 9 digits are returned untruncated.
func ExtractKBID(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	m := kbPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}

	digits := m[1]
	stripped := strings.TrimLeft(digits, "0")
	if stripped == "" {
		stripped = digits
	}
	if len(stripped) < kbIDWidth {
		stripped = strings.Repeat("0", kbIDWidth-len(stripped)) + stripped
	}
	return stripped, true
}

// NormalizeKBID accepts either a bare digit run of 3+ digits or any string
// ExtractKBID understands.
func NormalizeKBID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 3 && isDigits(s) {
		return ExtractKBID("KB" + s)
	}
	return ExtractKBID(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
