package io

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// DumpBufferViews writes every buffer view of bundle to dir as <view>.bin.
func DumpBufferViews(dir string, bundle *Bundle) error {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for id, data := range bundle.BufferViews {
		path := filepath.Join(dir, fmt.Sprintf("%d.bin", id))

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}

		writtenBytes, err := f.Write(data)
		closeErr := f.Close()

		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}

		log.Printf("written %d bytes @ %s", writtenBytes, path)
	}

	return nil
}
