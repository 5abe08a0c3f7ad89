package imageprocessor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestComputeFileDigestKnownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.bin")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := ComputeFileDigest(path)
	if err != nil {
		t.Fatalf("ComputeFileDigest: %v", err)
	}
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if digest != want {
		t.Errorf("digest = %s, want %s", digest, want)
	}
}

func TestComputeFileDigestIdenticalContentMatches(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.jpg")
	b := filepath.Join(dir, "sub", "b.jpg")
	if err := os.WriteFile(a, []byte("same bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(b), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("same bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	da, err := ComputeFileDigest(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := ComputeFileDigest(b)
	if err != nil {
		t.Fatal(err)
	}
	if da != db {
		t.Errorf("identical content produced different digests: %s vs %s", da, db)
	}
}

func TestComputeFileDigestMissingFile(t *testing.T) {
	if _, err := ComputeFileDigest(filepath.Join(t.TempDir(), "absent.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFingerprintDistance(t *testing.T) {
	cases := []struct {
		a, b uint64
		want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 0b1011, 3},
		{0, ^uint64(0), 64},
		{0xAAAAAAAAAAAAAAAA, 0x5555555555555555, 64},
	}
	for _, c := range cases {
		if got := FingerprintDistance(c.a, c.b); got != c.want {
			t.Errorf("FingerprintDistance(%#x, %#x) = %d, want %d", c.a, c.b, got, c.want)
		}
		// Distance is symmetric
		if got := FingerprintDistance(c.b, c.a); got != c.want {
			t.Errorf("FingerprintDistance(%#x, %#x) = %d, want %d", c.b, c.a, got, c.want)
		}
	}
}

func TestFingerprintFormatRoundTrip(t *testing.T) {
	for _, fp := range []uint64{0, 1, 0xDEADBEEF, ^uint64(0)} {
		s := FormatFingerprint(fp)
		if len(s) != 16 {
			t.Errorf("FormatFingerprint(%#x) = %q, want 16 hex digits", fp, s)
		}
		parsed, err := ParseFingerprint(s)
		if err != nil {
			t.Errorf("ParseFingerprint(%q): %v", s, err)
			continue
		}
		if parsed != fp {
			t.Errorf("round trip %#x -> %q -> %#x", fp, s, parsed)
		}
	}
}

func TestParseFingerprintRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "zz", "0x12", "not hex at all"} {
		if _, err := ParseFingerprint(bad); err == nil {
			t.Errorf("ParseFingerprint(%q) accepted invalid input", bad)
		}
	}
}
