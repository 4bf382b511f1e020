package tui

import "strings"

type CommandKind int

const (
	CmdAsk CommandKind = iota
	CmdAttach
	CmdDetach
	CmdFiles
	CmdUpload
	CmdReindex
	CmdKB
	CmdReset
	CmdHelp
	CmdQuit
	CmdUnknown
)

// Command is one parsed input line.
type Command struct {
	Kind CommandKind
	Name string
	Args []string
	Text string
}

var commandNames = map[string]CommandKind{
	"/attach":  CmdAttach,
	"/detach":  CmdDetach,
	"/files":   CmdFiles,
	"/upload":  CmdUpload,
	"/reindex": CmdReindex,
	"/kb":      CmdKB,
	"/reset":   CmdReset,
	"/help":    CmdHelp,
	"/quit":    CmdQuit,
	"/exit":    CmdQuit,
}

const HelpText = `Commands:
  /attach <paths...>  select files for upload
  /detach <path>      remove a file from the selection
  /files              list selected files
  /upload [paths...]  upload the selection (or the given paths)
  /reindex            rebuild the backend index
  /kb <name|id>       download a KB article as PDF
  /reset              start a new conversation
  /quit               leave
Anything else is sent as a question.`

// ParseCommand splits a line into a slash command or a question. A line is
// a command only when it starts with "/"; everything else is asked verbatim.
func ParseCommand(line string) Command {
	text := strings.TrimSpace(line)
	if !strings.HasPrefix(text, "/") {
		return Command{Kind: CmdAsk, Text: text}
	}

	fields := strings.Fields(text)
	name := strings.ToLower(fields[0])
	kind, ok := commandNames[name]
	if !ok {
		kind = CmdUnknown
	}
	return Command{Kind: kind, Name: name, Args: fields[1:], Text: text}
}
