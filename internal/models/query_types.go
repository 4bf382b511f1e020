// internal/models/query_types.go
package models

// ActionType names a user action; it doubles as the control name, the
// metrics label and the key under `actions:` in the config.
type ActionType string

const (
	ActionAskQuestion ActionType = "ask-question"
	ActionUploadFiles ActionType = "upload-files"
	ActionReindexKB   ActionType = "reindex-kb"
	ActionDownloadKB  ActionType = "download-kb"
)

func (a ActionType) String() string {
	return string(a)
}
