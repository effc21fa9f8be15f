package logx

import (
	"fmt"
	"os"
	"sync"
)

const (
	defaultMaxBytes = 2 * 1024 * 1024
	defaultBackups  = 5
)

// rotatingFile is an append-only file writer with size-based rotation:
// when the active file would exceed maxBytes, it is renamed to path.1
// (shifting older backups up to path.N) and a fresh file is opened.
type rotatingFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	backups  int

	f    *os.File
	size int64
}

func openRotatingFile(path string, maxSizeMB, backups int) (*rotatingFile, error) {
	maxBytes := int64(maxSizeMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	if backups <= 0 {
		backups = defaultBackups
	}
	rf := &rotatingFile{path: path, maxBytes: maxBytes, backups: backups}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	f, err := os.OpenFile(rf.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	rf.f = f
	rf.size = st.Size()
	return nil
}

func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.f == nil {
		if err := rf.open(); err != nil {
			return 0, err
		}
	}
	if rf.size+int64(len(p)) > rf.maxBytes && rf.size > 0 {
		if err := rf.rotate(); err != nil {
			// Rotation failure should not lose the log line; keep appending.
			fmt.Fprintf(os.Stderr, "logx: rotate %q failed: %v\n", rf.path, err)
		}
	}
	n, err := rf.f.Write(p)
	rf.size += int64(n)
	return n, err
}

func (rf *rotatingFile) rotate() error {
	if rf.f != nil {
		_ = rf.f.Close()
		rf.f = nil
	}
	// Shift path.N-1 -> path.N, ... path.1 -> path.2, path -> path.1.
	for i := rf.backups - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", rf.path, i)
		to := fmt.Sprintf("%s.%d", rf.path, i+1)
		if _, err := os.Stat(from); err == nil {
			_ = os.Rename(from, to)
		}
	}
	if err := os.Rename(rf.path, rf.path+".1"); err != nil {
		// Fall through to reopen; the oversized file keeps growing but logging continues.
		reopenErr := rf.open()
		if reopenErr != nil {
			return reopenErr
		}
		return err
	}
	return rf.open()
}

func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil {
		return nil
	}
	err := rf.f.Close()
	rf.f = nil
	return err
}
