package dist

import (
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "modules.db"))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorePutGet(t *testing.T) {
	s := testStore(t)
	if err := s.Put(sampleModule()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get("sample")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("stored module not found")
	}
	if got.Name != "sample" || len(got.Code) != 3 {
		t.Errorf("loaded module = %q with %d words", got.Name, len(got.Code))
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := testStore(t)
	_, ok, err := s.Get("nothing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("found a module that was never stored")
	}
}

func TestStorePutNameless(t *testing.T) {
	s := testStore(t)
	m := sampleModule()
	m.Name = ""
	if err := s.Put(m); err == nil {
		t.Error("storing a nameless module succeeded")
	}
}

func TestStoreReplace(t *testing.T) {
	s := testStore(t)
	if err := s.Put(sampleModule()); err != nil {
		t.Fatal(err)
	}
	m := sampleModule()
	m.Code[1] = 0x9999
	if err := s.Put(m); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.Get("sample")
	if err != nil || !ok {
		t.Fatalf("Get: (%v, %v)", ok, err)
	}
	if got.Code[1] != 0x9999 {
		t.Errorf("Code[1] = %#04x, want the replacement", uint16(got.Code[1]))
	}
}

func TestStoreDeleteAndNames(t *testing.T) {
	s := testStore(t)
	if err := s.Put(sampleModule()); err != nil {
		t.Fatal(err)
	}
	m := sampleModule()
	m.Name = "aaa"
	if err := s.Put(m); err != nil {
		t.Fatal(err)
	}

	names, err := s.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "aaa" || names[1] != "sample" {
		t.Errorf("Names = %v", names)
	}

	if err := s.Delete("aaa"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete("aaa"); err != nil {
		t.Errorf("double delete errored: %v", err)
	}
	names, err = s.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "sample" {
		t.Errorf("Names after delete = %v", names)
	}
}
