package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipepipe/pkg/metadata"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	if !strings.HasPrefix(out, appName+" version ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")

	signed := metadata.Sign("# Recipe pipeline report\n", true, "abc")
	if err := os.WriteFile(path, []byte(signed), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "verify", path)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if !strings.Contains(out, "ok (validated=true dataset=abc)") {
		t.Errorf("unexpected output %q", out)
	}

	if err := os.WriteFile(path, []byte(signed+"tampered"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "verify", path); err == nil {
		t.Error("expected tampered report to fail verification")
	}
}

func TestRun_EndToEnd(t *testing.T) {
	exports := t.TempDir()
	output := t.TempDir()

	recipes := `[{"recipe_id":"r1","title":"Dal","difficulty":"easy","prep_time_minutes":5,"cook_time_minutes":5,
		"ingredients":["lentils"],"steps":["boil"]}]`
	if err := os.WriteFile(filepath.Join(exports, "recipes.json"), []byte(recipes), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RECIPEPIPE_SOURCE_DIR", exports)

	out, err := execute(t, "run", "--output", output, "--log-level", "error")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !strings.Contains(out, "recipes=1 interactions=0 valid=true") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "verify", "--output", output); err != nil {
		t.Errorf("verify of emitted report failed: %v", err)
	}
}

func TestRun_MissingSource(t *testing.T) {
	t.Setenv("RECIPEPIPE_SOURCE_DIR", filepath.Join(t.TempDir(), "missing"))

	if _, err := execute(t, "run", "--output", t.TempDir()); err == nil {
		t.Error("expected run to fail without a source")
	}
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.md")

	input := "| Relation | Invalid |\n| --- | --- |\n| recipes | 2 |\n"
	want := "| Relation | Invalid |\n| -------- | ------- |\n| recipes  | 2       |\n"

	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "format", dir)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	if !strings.Contains(out, "would format: "+path) {
		t.Errorf("unexpected output %q", out)
	}

	if content, _ := os.ReadFile(path); string(content) != input {
		t.Error("dry run modified the file")
	}

	if _, err := execute(t, "format", "--write", dir); err != nil {
		t.Fatalf("format --write failed: %v", err)
	}

	if content, _ := os.ReadFile(path); string(content) != want {
		t.Errorf("unexpected formatted content %q", content)
	}

	out, err = execute(t, "format", dir)
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}

	if !strings.Contains(out, "0 file(s) changed") {
		t.Errorf("expected formatted file to be stable, got %q", out)
	}
}

func TestConfig_Save(t *testing.T) {
	t.Setenv("RECIPEPIPE_SOURCE_DIR", "exports")

	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}

	if !strings.Contains(out, "Source: file:exports") {
		t.Errorf("unexpected output %q", out)
	}

	path := filepath.Join(t.TempDir(), "recipepipe.yaml")

	if _, err := execute(t, "config", "--save", path); err != nil {
		t.Fatalf("config --save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "dir: exports") {
		t.Errorf("saved config missing source dir:\n%s", data)
	}
}
