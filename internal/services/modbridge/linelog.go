package modbridge

import "sync"

// LineLog is a Channel that keeps every line in memory. The replay command
// prints it and tests inspect it.
type LineLog struct {
	mu    sync.Mutex
	lines []string
}

var _ Channel = (*LineLog)(nil)

func NewLineLog() *LineLog {
	return &LineLog{}
}

func (l *LineLog) Send(line string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	return true
}

// Lines returns a copy of everything sent so far
func (l *LineLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Matching returns the lines that set the given field
func (l *LineLog) Matching(field string) []string {
	prefix := "set " + field + " "
	var out []string
	for _, line := range l.Lines() {
		if len(line) >= len(prefix) && line[:len(prefix)] == prefix {
			out = append(out, line[len(prefix):])
		}
	}
	return out
}

func (l *LineLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}
