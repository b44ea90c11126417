package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	flushInterval = 2 * time.Second
	queueDepth    = 1000
)

// AsyncFileWriter moves log writes off the request path. Entries are queued
// onto a channel and flushed to disk periodically; when the queue is full
// the entry is dropped rather than blocking the caller.
type AsyncFileWriter struct {
	out   *bufio.Writer
	file  *os.File
	mu    sync.Mutex
	queue chan []byte
	done  chan struct{}
}

func NewAsyncFileWriter(logFile string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	w := &AsyncFileWriter{
		out:   bufio.NewWriterSize(file, bufferSize),
		file:  file,
		queue: make(chan []byte, queueDepth),
		done:  make(chan struct{}),
	}
	go w.drain()

	return w, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	entry := append([]byte(nil), p...)
	select {
	case w.queue <- entry:
		return len(p), nil
	default:
		// queue full, drop the entry
		return 0, nil
	}
}

func (w *AsyncFileWriter) drain() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-w.queue:
			w.mu.Lock()
			if _, err := w.out.Write(entry); err != nil {
				fmt.Println("error writing log entry to file", err)
			}
			w.mu.Unlock()
		case <-ticker.C:
			w.flush()
		case <-w.done:
			w.flush()
			return
		}
	}
}

func (w *AsyncFileWriter) flush() {
	w.mu.Lock()
	_ = w.out.Flush()
	w.mu.Unlock()
}

func (w *AsyncFileWriter) Close() {
	close(w.done)
	_ = w.file.Close()
}
