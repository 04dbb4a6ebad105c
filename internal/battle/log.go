package battle

import "strings"

// Log accumulates the battle's line-oriented protocol log (§4.11, §6.3):
// every state change worth narrating to a client is appended as one
// pipe-delimited entry, mirroring the teacher's append-only event log
// pattern used for replay/spectator streaming.
type Log struct {
	lines []string
}

func newLog() *Log {
	return &Log{}
}

// Append joins parts with "|" and records them as one log line.
func (l *Log) Append(parts ...string) {
	l.lines = append(l.lines, strings.Join(parts, "|"))
}

// Lines returns every line logged so far, oldest first.
func (l *Log) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Since returns every line logged after the first n lines, for incremental
// client-side streaming (a spectator reconnecting mid-battle).
func (l *Log) Since(n int) []string {
	if n >= len(l.lines) {
		return nil
	}
	out := make([]string, len(l.lines)-n)
	copy(out, l.lines[n:])
	return out
}

// Len reports the total number of lines logged so far.
func (l *Log) Len() int { return len(l.lines) }

// Log exposes the battle's accumulated protocol log to callers (§6.3).
func (b *Battle) Log() *Log { return b.log }
