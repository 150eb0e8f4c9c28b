package objectclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/markdave123-py/Moleqa/internal/core"
)

var _ core.ObjectClient = (*MemoryClient)(nil)

type memoryObject struct {
	contentType string
	data        []byte
}

// MemoryClient keeps uploaded objects in process memory.
type MemoryClient struct {
	mu   sync.RWMutex
	objs map[string]memoryObject
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{objs: make(map[string]memoryObject)}
}

func (c *MemoryClient) UploadFile(ctx context.Context, key string, data io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.objs[key] = memoryObject{contentType: contentType, data: b}
	return "memory://" + key, nil
}

func (c *MemoryClient) DeleteFile(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objs, key)
	return nil
}

func (c *MemoryClient) GetObjectReader(_ context.Context, key string) (io.ReadCloser, error) {
	c.mu.RLock()
	obj, ok := c.objs[key]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrObjectNotFound, key)
	}
	dataCopy := make([]byte, len(obj.data))
	copy(dataCopy, obj.data)
	return io.NopCloser(bytes.NewReader(dataCopy)), nil
}

// Len reports how many objects are stored.
func (c *MemoryClient) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.objs)
}
