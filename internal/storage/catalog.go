// Package storage persists and retrieves per-key index records, either as a
// single file with an append-only metadata catalog or as rows in a
// key-value namespace. Grounded on sst/writer.go's footer/CRC discipline and
// segmentmanager/disk.go's directory-and-mutex handle pattern.
package storage

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// CatalogEntry is one (key, start_bytes, length) record in a file's trailing
// MetaDataListForFile.
type CatalogEntry struct {
	Key       string
	StartByte uint64
	Length    uint64
}

// Catalog is the in-memory form of MetaDataListForFile.
type Catalog struct {
	Entries []CatalogEntry
}

// Lookup returns the entry for key, if present.
func (c *Catalog) Lookup(key string) (CatalogEntry, bool) {
	for _, e := range c.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Encode serializes the catalog as a length-prefixed sequence of
// (keyLen u32, key, startByte u64, length u64) records followed by a
// trailing CRC32 of everything preceding it. This encoded form is what gets
// written immediately before the file's final 8-byte length suffix.
func (c *Catalog) Encode() []byte {
	size := 4
	for _, e := range c.Entries {
		size += 4 + len(e.Key) + 8 + 8
	}
	buf := make([]byte, 0, size+4)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Entries)))
	for _, e := range c.Entries {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(e.Key)))
		buf = append(buf, e.Key...)
		buf = binary.LittleEndian.AppendUint64(buf, e.StartByte)
		buf = binary.LittleEndian.AppendUint64(buf, e.Length)
	}
	crc := crc32.ChecksumIEEE(buf)
	buf = binary.LittleEndian.AppendUint32(buf, crc)
	return buf
}

// DecodeCatalog parses the bytes produced by Catalog.Encode.
func DecodeCatalog(data []byte) (*Catalog, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("storage: catalog too short: %d bytes", len(data))
	}
	body := data[:len(data)-4]
	wantCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	if gotCRC := crc32.ChecksumIEEE(body); gotCRC != wantCRC {
		return nil, fmt.Errorf("storage: catalog CRC mismatch: got %#x, want %#x", gotCRC, wantCRC)
	}

	pos := 0
	readU32 := func() (uint32, error) {
		if pos+4 > len(body) {
			return 0, fmt.Errorf("storage: catalog truncated at offset %d", pos)
		}
		v := binary.LittleEndian.Uint32(body[pos:])
		pos += 4
		return v, nil
	}
	readU64 := func() (uint64, error) {
		if pos+8 > len(body) {
			return 0, fmt.Errorf("storage: catalog truncated at offset %d", pos)
		}
		v := binary.LittleEndian.Uint64(body[pos:])
		pos += 8
		return v, nil
	}

	count, err := readU32()
	if err != nil {
		return nil, err
	}
	cat := &Catalog{Entries: make([]CatalogEntry, 0, count)}
	for i := uint32(0); i < count; i++ {
		keyLen, err := readU32()
		if err != nil {
			return nil, err
		}
		if pos+int(keyLen) > len(body) {
			return nil, fmt.Errorf("storage: catalog truncated reading key at offset %d", pos)
		}
		key := string(body[pos : pos+int(keyLen)])
		pos += int(keyLen)
		start, err := readU64()
		if err != nil {
			return nil, err
		}
		length, err := readU64()
		if err != nil {
			return nil, err
		}
		cat.Entries = append(cat.Entries, CatalogEntry{Key: key, StartByte: start, Length: length})
	}
	return cat, nil
}
