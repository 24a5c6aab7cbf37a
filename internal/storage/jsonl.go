package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"poapFeed/internal/model"
)

// JsonlSink appends notifications to a JSONL file, or stdout when path is "-".
type JsonlSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	owned  bool
}

func NewJsonlSink(path string) (*JsonlSink, error) {
	if path == "-" {
		return &JsonlSink{file: os.Stdout, writer: bufio.NewWriter(os.Stdout)}, nil
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return &JsonlSink{file: file, writer: bufio.NewWriter(file), owned: true}, nil
}

// Publish writes one notification per line and flushes it.
func (s *JsonlSink) Publish(_ context.Context, n model.Notification) error {
	line, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.Write(line); err != nil {
		return fmt.Errorf("write notification: %w", err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (s *JsonlSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		if s.owned {
			s.file.Close()
		}
		return err
	}
	if s.owned {
		return s.file.Close()
	}
	return nil
}
