// Package index holds the per-locale food search index and the gateway used to
// reach it.
//
// The Worker owns one immutable Generation per locale and answers commands
// arriving over a Conn. The Gateway is the caller-facing handle: it tracks
// readiness, allocates query and build ids and matches every asynchronous reply
// to its caller through a one-shot channel. Both sides exchange only JSON
// messages, either over an in-process Pipe or over the stdin/stdout of a child
// process (StartProcess / StdioConn).
//
// # Protocol
//
// Gateway to worker:
//
//	{"type":"command","rebuild":true,"buildId":N,"locales":["en_GB"]}
//	{"type":"command","exit":true}
//	{"type":"query","queryId":N,"parameters":{...}}
//
// Worker to gateway: the string "ready", {"buildCommandId":N,"success":bool,"error":...}
// or {"queryId":N,"success":bool,"results":{...},"error":...}.
//
// # Generations
//
// A rebuild fetches every requested locale concurrently and installs the new
// generations together, and only when all of them built. A locale's generation
// is replaced only by a build issued later than the installed one, so a slow
// older rebuild never overwrites a newer one.
package index
