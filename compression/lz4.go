package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

func CompressLz4(src []byte, output *bytes.Buffer) error {
	zw := lz4.NewWriter(output)

	if err := zw.Apply(lz4.ChecksumOption(true)); err != nil {
		return err
	}

	if _, err := zw.Write(src); err != nil {
		return err
	}

	flushErr := zw.Flush()

	if flushErr != nil {
		return flushErr
	}

	return zw.Close()
}

// DecompressLz4 inflates an lz4 frame that must hold exactly size bytes.
func DecompressLz4(src []byte, size int) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(src))

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, fmt.Errorf("unable to decompress lz4 frame: %w", err)
	}

	// the rest of the frame must be empty and end cleanly, which also checks
	// the end mark and content checksum
	trailing, err := io.Copy(io.Discard, zr)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress lz4 frame: %w", err)
	}
	if trailing != 0 {
		return nil, fmt.Errorf("lz4 frame holds more than %d bytes", size)
	}

	return out, nil
}
