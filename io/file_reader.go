package io

import (
	"bytes"
	"errors"
	"os"
)

type FileReader struct {
	path   string
	file   *os.File
	opened bool

	exists bool
}

func NewFileReader(path string) *FileReader {

	_, err := os.Stat(path)

	freader := &FileReader{
		path:   path,
		exists: err == nil,
	}

	return freader
}

func (f *FileReader) Exists() bool {
	return f.exists
}

func (f *FileReader) Open(readOnly bool) (topErr error) {

	var perm os.FileMode = 0644

	if readOnly {
		f.file, topErr = os.OpenFile(f.path, os.O_RDONLY, perm)
	} else {
		f.file, topErr = os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	}

	if topErr == nil {
		f.opened = true
	}

	return topErr

}

func (f *FileReader) Close() error {
	if !f.opened {
		return nil
	}

	f.opened = false
	return f.file.Close()
}

func (f *FileReader) Size() (int, error) {
	if !f.opened {
		return 0, errors.New("file not opened")
	}

	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return int(info.Size()), nil
}

func (f *FileReader) ReadAt(out []byte, off, length int) (err error) {
	if !f.opened {
		err = errors.New("file not opened")
		return err
	}

	var readBytes int
	readBytes, err = f.file.ReadAt(out[:length], int64(off))

	if readBytes != length {
		err = errors.New("read bytes mismatch")
		return err
	}

	return nil
}

func (f *FileReader) WriteAt(in []byte, off int) (err error) {
	if !f.opened {
		err = errors.New("file not opened")
		return err
	}

	var writtenBytes int
	writtenBytes, err = f.file.WriteAt(in, int64(off))
	if writtenBytes != len(in) {
		err = errors.New("written bytes mismatch")
		return err
	}

	return err
}

// WriteBundleFile encodes bundle into path, replacing what was there.
func WriteBundleFile(path string, bundle *Bundle) error {

	var encoded bytes.Buffer
	if err := WriteBundle(&encoded, bundle); err != nil {
		return err
	}

	f := NewFileReader(path)
	if err := f.Open(false); err != nil {
		return err
	}

	if err := f.WriteAt(encoded.Bytes(), 0); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// ReadBundleFile maps path and decodes it. close releases the mapping, the
// buffer views of uncompressed bundles must not be used afterwards.
func ReadBundleFile(path string) (bundle *Bundle, close func() error, err error) {

	data, close, err := MapFile(path)
	if err != nil {
		return nil, nil, err
	}

	bundle, err = ReadBundle(data)
	if err != nil {
		close()
		return nil, nil, err
	}

	return bundle, close, nil
}
