//go:build unix

package io

import (
	"os"

	"golang.org/x/sys/unix"
)

// MapFile maps path copy-on-write: writes through the returned bytes stay in
// memory and never reach the file.
func MapFile(path string) ([]byte, func() error, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}

	if info.Size() == 0 {
		return []byte{}, func() error { return nil }, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}

	return data, func() error { return unix.Munmap(data) }, nil
}
