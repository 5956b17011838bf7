//go:build unix

package graph

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// mappedFile is a read-only memory mapping of a whole file.
type mappedFile struct {
	data []byte
}

func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &mappedFile{}, nil
	}
	if size < 0 || int64(int(size)) != size {
		return nil, errors.New("mmap: unsupported file size")
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &mappedFile{data: data}, nil
}

func (m *mappedFile) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
