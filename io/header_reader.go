package io

import (
	"encoding/binary"
	"fmt"

	"github.com/dot5enko/metatable/bits"
	"github.com/google/uuid"
)

type BundleHeader struct {
	Uid         uuid.UUID
	Count       uint32
	Compression Compression
	Entries     []BundleEntry
}

func (header *BundleHeader) WriteTo(bw *bits.BitWriter) (int, error) {

	start := bw.Position()

	bw.Write([]byte(BundleMagic))
	bw.PutUint16(BundleVersion)
	bw.Write(header.Uid[:])
	bw.PutUint32(header.Count)
	bw.WriteByte(uint8(header.Compression))
	bw.PutUint16(uint16(len(header.Entries)))

	for _, entry := range header.Entries {
		bw.PutUint32(entry.BufferView)
		bw.PutUint64(entry.ByteOffset)
		bw.PutUint64(entry.ByteLength)
		bw.PutUint64(entry.StoredLength)
	}

	return bw.Position() - start, nil
}

func (header *BundleHeader) FromBytes(input []byte) (topErr error) {

	reader := bits.NewBinReader(input, binary.LittleEndian)

	magic, topErr := reader.ReadBytes(len(BundleMagic))
	if topErr != nil || string(magic) != BundleMagic {
		return ErrBadMagic
	}

	version, topErr := reader.ReadU16()
	if topErr != nil {
		return fmt.Errorf("unable to decode bundle version: %w", topErr)
	}
	if version != BundleVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	header.Uid, topErr = reader.ReadUUID()
	if topErr != nil {
		return fmt.Errorf("unable to decode bundle uid: %w", topErr)
	}

	header.Count, topErr = reader.ReadU32()
	if topErr != nil {
		return fmt.Errorf("unable to decode bundle row count: %w", topErr)
	}

	compressionRaw, topErr := reader.ReadU8()
	if topErr != nil {
		return fmt.Errorf("unable to decode bundle compression: %w", topErr)
	}
	header.Compression = Compression(compressionRaw)

	entries, topErr := reader.ReadU16()
	if topErr != nil {
		return fmt.Errorf("unable to decode bundle entry count: %w", topErr)
	}

	if reader.Remaining() < int(entries)*BundleEntrySize {
		return fmt.Errorf("%w: directory of %d entries is truncated", ErrCorruptBundle, entries)
	}

	header.Entries = make([]BundleEntry, entries)
	for i := range header.Entries {
		entry := &header.Entries[i]

		viewId, _ := reader.ReadU32()
		entry.BufferView = viewId
		entry.ByteOffset = reader.MustReadU64()
		entry.ByteLength = reader.MustReadU64()
		entry.StoredLength = reader.MustReadU64()
	}

	return nil
}
