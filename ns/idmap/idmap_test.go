package idmap

import "testing"

func TestSingle(t *testing.T) {
	entries := Single(1000, 5000)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.InsideStart != 1000 || e.OutsideStart != 5000 || e.Count != 1 {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestPaths(t *testing.T) {
	if got, want := Path(42, "uid"), "/proc/42/uid_map"; got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
	if got, want := SetgroupsPath(42), "/proc/42/setgroups"; got != want {
		t.Fatalf("SetgroupsPath() = %q, want %q", got, want)
	}
}
