//go:build !unix

package io

// MapFile reads path into memory on platforms without mmap.
func MapFile(path string) ([]byte, func() error, error) {

	f := NewFileReader(path)
	if err := f.Open(true); err != nil {
		return nil, nil, err
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return nil, nil, err
	}

	data := make([]byte, size)
	if err := f.ReadAt(data, 0, size); err != nil {
		return nil, nil, err
	}

	return data, func() error { return nil }, nil
}
