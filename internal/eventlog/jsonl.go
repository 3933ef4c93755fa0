package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"swapPool/internal/model"
)

// Jsonl appends records to a file as JSON lines, one envelope per
// record.
type Jsonl struct {
	path string
	mu   sync.Mutex
}

// envelope tags each line with the record kind and ingest time.
type envelope struct {
	Type       string      `json:"type"`
	IngestedAt string      `json:"ingested_at"`
	Event      interface{} `json:"event"`
}

func NewJsonl(path string) *Jsonl {
	return &Jsonl{path: path}
}

func (s *Jsonl) AppendMint(_ context.Context, rec model.MintRecord) error {
	return s.append("mint", rec)
}

func (s *Jsonl) AppendBurn(_ context.Context, rec model.BurnRecord) error {
	return s.append("burn", rec)
}

func (s *Jsonl) AppendSwap(_ context.Context, rec model.SwapRecord) error {
	return s.append("swap", rec)
}

func (s *Jsonl) append(kind string, rec interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	line, err := json.Marshal(envelope{
		Type:       kind,
		IngestedAt: time.Now().UTC().Format(time.RFC3339),
		Event:      rec,
	})
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", kind, err)
	}

	writer := bufio.NewWriter(file)
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write %s record: %w", kind, err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}
