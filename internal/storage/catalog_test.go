package storage

import "testing"

func TestCatalogEncodeDecodeRoundTrip(t *testing.T) {
	cat := &Catalog{Entries: []CatalogEntry{
		{Key: "/k/x", StartByte: 0, Length: 40},
		{Key: "/k/x10", StartByte: 40, Length: 32},
	}}
	data := cat.Encode()

	got, err := DecodeCatalog(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	e, ok := got.Lookup("/k/x10")
	if !ok || e.StartByte != 40 || e.Length != 32 {
		t.Fatalf("unexpected entry for /k/x10: %+v", e)
	}
}

func TestDecodeCatalogRejectsCorruption(t *testing.T) {
	cat := &Catalog{Entries: []CatalogEntry{{Key: "a", StartByte: 0, Length: 1}}}
	data := cat.Encode()
	data[0] ^= 0xff

	if _, err := DecodeCatalog(data); err == nil {
		t.Fatal("expected CRC mismatch error")
	}
}
