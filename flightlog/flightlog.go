// Package flightlog persists the textual event log to timestamped files
// under the user's home directory, one file per session.
package flightlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
)

var logdir string

// Init resolves and creates the log directory. Called lazily by Open;
// SetDir overrides it (used by tests and the --logdir flag).
func Init() error {
	if logdir != "" {
		return nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return err
	}
	logdir = filepath.Join(home, ".esplink")
	return os.MkdirAll(logdir, 0777)
}

func SetDir(dir string) error {
	logdir = dir
	return os.MkdirAll(logdir, 0777)
}

// Log is an append-only per-session diagnostics file.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

func Open(session string) (*Log, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s-%s.log", session, time.Now().Format("20060102-150405"))
	f, err := os.OpenFile(filepath.Join(logdir, name), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	return &Log{f: f}, nil
}

func (l *Log) Append(line string) {
	l.mu.Lock()
	fmt.Fprintf(l.f, "%s %s\n", time.Now().Format(time.RFC3339), line)
	l.mu.Unlock()
}

func (l *Log) Path() string {
	return l.f.Name()
}

func (l *Log) Close() error {
	return l.f.Close()
}
