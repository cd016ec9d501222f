package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	goio "io"
	"maps"
	"runtime"
	"slices"

	"github.com/dot5enko/metatable/bits"
	"github.com/dot5enko/metatable/compression"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	BundleMagic   = "MTB1"
	BundleVersion = 1

	// magic + version + uid + row count + compression + entries
	BundleHeaderSize = 4 + 2 + 16 + 4 + 1 + 2
	// view id + byte offset + byte length + stored length
	BundleEntrySize = 4 + 8 + 8 + 8

	// sections start on 8 byte boundaries so mapped 64-bit views stay aligned
	sectionAlignment = 8
)

type Compression uint8

const (
	NoCompression Compression = iota
	Lz4Compression
)

func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case Lz4Compression:
		return "lz4"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return NoCompression, nil
	case "lz4":
		return Lz4Compression, nil
	}
	return NoCompression, fmt.Errorf("unknown compression '%s'", name)
}

var (
	ErrBadMagic           = errors.New("not a metatable bundle")
	ErrUnsupportedVersion = errors.New("unsupported bundle version")
	ErrCorruptBundle      = errors.New("corrupt bundle")
)

// Bundle is a table's row count and buffer views as stored in one file.
type Bundle struct {
	Uid         uuid.UUID
	Count       int
	Compression Compression
	BufferViews map[int][]byte
}

type BundleEntry struct {
	BufferView   uint32
	ByteOffset   uint64
	ByteLength   uint64
	StoredLength uint64
}

func align(n int) int {
	if rem := n % sectionAlignment; rem != 0 {
		return n + sectionAlignment - rem
	}
	return n
}

func WriteBundle(w goio.Writer, bundle *Bundle) error {

	ids := slices.Sorted(maps.Keys(bundle.BufferViews))

	stored, err := encodeSections(bundle, ids)
	if err != nil {
		return err
	}

	header := BundleHeader{
		Uid:         bundle.Uid,
		Count:       uint32(bundle.Count),
		Compression: bundle.Compression,
		Entries:     make([]BundleEntry, len(ids)),
	}

	offset := align(BundleHeaderSize + BundleEntrySize*len(ids))
	for i, id := range ids {
		header.Entries[i] = BundleEntry{
			BufferView:   uint32(id),
			ByteOffset:   uint64(offset),
			ByteLength:   uint64(len(bundle.BufferViews[id])),
			StoredLength: uint64(len(stored[i])),
		}
		offset = align(offset + len(stored[i]))
	}

	bw := bits.NewGrowingBuffer(offset, binary.LittleEndian)

	if _, err := header.WriteTo(&bw); err != nil {
		return err
	}

	for i, entry := range header.Entries {
		bw.EmptyBytes(int(entry.ByteOffset) - bw.Position())
		if _, err := bw.Write(stored[i]); err != nil {
			return err
		}
	}

	_, err = w.Write(bw.Bytes())
	return err
}

func encodeSections(bundle *Bundle, ids []int) ([][]byte, error) {

	stored := make([][]byte, len(ids))

	switch bundle.Compression {
	case NoCompression:
		for i, id := range ids {
			stored[i] = bundle.BufferViews[id]
		}
		return stored, nil
	case Lz4Compression:
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptBundle, bundle.Compression)
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, id := range ids {
		g.Go(func() error {
			var out bytes.Buffer
			if err := compression.CompressLz4(bundle.BufferViews[id], &out); err != nil {
				return fmt.Errorf("buffer view %d: %w", id, err)
			}
			stored[i] = out.Bytes()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stored, nil
}

// ReadBundle decodes a bundle. Uncompressed buffer views are sub-slices of data.
func ReadBundle(data []byte) (*Bundle, error) {

	var header BundleHeader
	if err := header.FromBytes(data); err != nil {
		return nil, err
	}

	for _, entry := range header.Entries {
		end := entry.ByteOffset + entry.StoredLength
		if end < entry.ByteOffset || end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: buffer view %d [%d:%d] is past the end of %d bytes", ErrCorruptBundle, entry.BufferView, entry.ByteOffset, end, len(data))
		}
		if header.Compression == NoCompression && entry.StoredLength != entry.ByteLength {
			return nil, fmt.Errorf("%w: buffer view %d stored length %d differs from length %d", ErrCorruptBundle, entry.BufferView, entry.StoredLength, entry.ByteLength)
		}
	}

	views := make([][]byte, len(header.Entries))

	switch header.Compression {
	case NoCompression:
		for i, entry := range header.Entries {
			end := entry.ByteOffset + entry.ByteLength
			views[i] = data[entry.ByteOffset:end:end]
		}
	case Lz4Compression:
		var g errgroup.Group
		g.SetLimit(runtime.NumCPU())

		for i, entry := range header.Entries {
			g.Go(func() error {
				section := data[entry.ByteOffset : entry.ByteOffset+entry.StoredLength]
				view, err := compression.DecompressLz4(section, int(entry.ByteLength))
				if err != nil {
					return fmt.Errorf("%w: buffer view %d: %w", ErrCorruptBundle, entry.BufferView, err)
				}
				views[i] = view
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorruptBundle, header.Compression)
	}

	bundle := &Bundle{
		Uid:         header.Uid,
		Count:       int(header.Count),
		Compression: header.Compression,
		BufferViews: make(map[int][]byte, len(views)),
	}

	for i, entry := range header.Entries {
		bundle.BufferViews[int(entry.BufferView)] = views[i]
	}

	return bundle, nil
}
