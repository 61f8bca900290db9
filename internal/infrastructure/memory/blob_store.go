package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

var _ inventory.BlobStore = (*Blobs)(nil)

// Blobs almacenamiento de adjuntos en memoria.
type Blobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

// NewBlobs crea un almacenamiento vacío.
func NewBlobs() *Blobs {
	return &Blobs{objects: make(map[string][]byte)}
}

// FailPuts hace que las subidas siguientes fallen con err (nil restablece).
func (b *Blobs) FailPuts(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failPut = err
}

func (b *Blobs) Put(_ context.Context, key, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPut != nil {
		return "", b.failPut
	}
	b.objects[key] = data
	return fmt.Sprintf("memory://%s", key), nil
}

func (b *Blobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

// Keys claves almacenadas.
func (b *Blobs) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.objects))
	for k := range b.objects {
		out = append(out, k)
	}
	return out
}

// Get contenido de una clave.
func (b *Blobs) Get(key string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	return data, ok
}
