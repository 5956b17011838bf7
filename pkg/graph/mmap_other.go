//go:build !unix

package graph

import "os"

// mappedFile holds a whole file read into memory where mmap is unavailable.
type mappedFile struct {
	data []byte
}

func openMapped(path string) (*mappedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &mappedFile{data: data}, nil
}

func (m *mappedFile) Close() error {
	if m != nil {
		m.data = nil
	}
	return nil
}
