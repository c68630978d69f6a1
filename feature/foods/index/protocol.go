package index

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	typeCommand = "command"
	typeQuery   = "query"

	readyLiteral = "ready"
)

// Command is a gateway to worker message:
//
//	{"type":"command","rebuild":true,"buildId":N,"locales":[...]}
//	{"type":"command","exit":true}
//	{"type":"query","queryId":N,"parameters":{...}}
type Command struct {
	Type       string        `json:"type"`
	Rebuild    bool          `json:"rebuild,omitempty"`
	Exit       bool          `json:"exit,omitempty"`
	BuildID    *uint64       `json:"buildId,omitempty"`
	Locales    []string      `json:"locales,omitempty"`
	QueryID    *uint64       `json:"queryId,omitempty"`
	Parameters *SearchParams `json:"parameters,omitempty"`
}

func rebuildCommand(buildID uint64, locales []string) Command {
	return Command{Type: typeCommand, Rebuild: true, BuildID: &buildID, Locales: locales}
}

func exitCommand() Command {
	return Command{Type: typeCommand, Exit: true}
}

func queryCommand(queryID uint64, params SearchParams) Command {
	return Command{Type: typeQuery, QueryID: &queryID, Parameters: &params}
}

// Reply is a worker to gateway message: the JSON string "ready", a build reply
// {"buildCommandId":N,"success":bool,"error":...} or a query reply
// {"queryId":N,"success":bool,"results":{...},"error":...}.
type Reply struct {
	Ready          bool           `json:"-"`
	BuildCommandID *uint64        `json:"buildCommandId,omitempty"`
	QueryID        *uint64        `json:"queryId,omitempty"`
	Success        bool           `json:"success"`
	Results        *SearchResults `json:"results,omitempty"`
	Error          string         `json:"error,omitempty"`
}

type replyFields Reply

func (r Reply) MarshalJSON() ([]byte, error) {
	if r.Ready {
		return json.Marshal(readyLiteral)
	}
	return json.Marshal(replyFields(r))
}

func (r *Reply) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != readyLiteral {
			return fmt.Errorf("unexpected worker signal %q", s)
		}
		*r = Reply{Ready: true}
		return nil
	}
	var f replyFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Reply(f)
	return nil
}

func readyReply() Reply {
	return Reply{Ready: true}
}

func buildReply(buildID uint64, err error) Reply {
	r := Reply{BuildCommandID: &buildID, Success: err == nil}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func queryReply(queryID uint64, results *SearchResults, err error) Reply {
	r := Reply{QueryID: &queryID, Success: err == nil, Results: results}
	if err != nil {
		r.Error = err.Error()
		r.Results = nil
	}
	return r
}

// recoverIDs pulls correlation ids out of a command that failed to decode.
func recoverIDs(data []byte) (buildID, queryID *uint64) {
	var loose struct {
		BuildID *uint64 `json:"buildId"`
		QueryID *uint64 `json:"queryId"`
	}
	if err := json.Unmarshal(data, &loose); err != nil {
		return nil, nil
	}
	return loose.BuildID, loose.QueryID
}
