package sink

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemorySink buffers archives in memory, keyed by name. Intended for tests.
type MemorySink struct {
	mu       sync.RWMutex
	archives map[string]*bytes.Buffer
}

func NewMemory() *MemorySink {
	return &MemorySink{
		archives: make(map[string]*bytes.Buffer),
	}
}

// Name returns the identifier name defined for this sink.
func (*MemorySink) Name() string {
	return "memory"
}

func (ms *MemorySink) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	buffer := &bytes.Buffer{}
	ms.archives[name] = buffer

	return &memoryStream{buffer: buffer, sink: ms}, nil
}

// Archive returns the bytes stored under name.
func (ms *MemorySink) Archive(name string) ([]byte, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	buffer, exists := ms.archives[name]
	if !exists {
		return nil, false
	}

	return buffer.Bytes(), true
}

type memoryStream struct {
	mu     sync.Mutex
	buffer *bytes.Buffer
	sink   *MemorySink
}

func (s *memoryStream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sink.mu.Lock()
	defer s.sink.mu.Unlock()

	return s.buffer.Write(p)
}

func (s *memoryStream) Close() error {
	return nil
}
