package metadata

import (
	"errors"
	"strings"
	"testing"
)

const sampleReport = "# Recipe report\n\n| metric | value |\n| --- | --- |\n| recipes | 2 |"

func TestSignAndVerify(t *testing.T) {
	signed := Sign(sampleReport, true, "abc123")

	if !strings.Contains(signed, TagStart) || !strings.Contains(signed, TagEnd) {
		t.Fatalf("signed content is missing the metadata block:\n%s", signed)
	}

	meta, err := Verify(signed)
	if err != nil {
		t.Fatalf("Verify returned unexpected error: %v", err)
	}

	if !meta.Validation {
		t.Error("Validation = false, want true")
	}

	if meta.Dataset != "abc123" {
		t.Errorf("Dataset = %q, want abc123", meta.Dataset)
	}

	if meta.Version != Version {
		t.Errorf("Version = %q, want %q", meta.Version, Version)
	}
}

func TestSign_Deterministic(t *testing.T) {
	first := Sign(sampleReport, false, "d")
	second := Sign(first, false, "d")

	if first != second {
		t.Errorf("re-signing changed the content:\n%s\n---\n%s", first, second)
	}
}

func TestVerify_Tampered(t *testing.T) {
	signed := Sign(sampleReport, true, "d")
	tampered := strings.Replace(signed, "| recipes | 2 |", "| recipes | 3 |", 1)

	_, err := Verify(tampered)
	if !errors.Is(err, ErrHashMismatch) {
		t.Errorf("Verify error = %v, want ErrHashMismatch", err)
	}
}

func TestVerify_NoBlock(t *testing.T) {
	_, err := Verify(sampleReport)
	if !errors.Is(err, ErrNoMetadataBlock) {
		t.Errorf("Verify error = %v, want ErrNoMetadataBlock", err)
	}
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint(map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	b, err := Fingerprint(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if a != b {
		t.Errorf("fingerprints differ for equal maps: %s vs %s", a, b)
	}

	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64", len(a))
	}
}
