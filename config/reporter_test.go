package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReport_Close(t *testing.T) {
	dir := t.TempDir()
	stored := filepath.Join(dir, "final.log")
	if err := os.WriteFile(stored, []byte("log line"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	rc := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	r, err := rc.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	r.Store("final.log", stored)
	r.Store("missing.log", filepath.Join(dir, "never-written.log"))
	r.StoreData("input/doc-10.xhtml", []byte("<html/>"))
	r.StoreData("input/doc-2.xhtml", []byte("<p/>"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	arc, err := zip.OpenReader(rc.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer arc.Close()

	var names []string
	contents := make(map[string]string)
	for _, f := range arc.File {
		names = append(names, f.Name)
		rd, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rd)
		rd.Close()
		contents[f.Name] = string(data)
	}

	want := "MANIFEST final.log input/doc-2.xhtml input/doc-10.xhtml"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("archive entries = %q, want %q", got, want)
	}
	if contents["final.log"] != "log line" {
		t.Errorf("final.log = %q", contents["final.log"])
	}
	if !strings.Contains(contents["MANIFEST"], "missing.log") {
		t.Errorf("MANIFEST does not list missing.log:\n%s", contents["MANIFEST"])
	}
}

func TestReport_StoreTwicePanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("config.yaml", []byte("a"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate entry")
		}
	}()
	r.StoreData("config.yaml", []byte("b"))
}

func TestReport_Nil(t *testing.T) {
	var r *Report
	r.Store("x", "y")
	r.StoreData("x", nil)
	if r.Name() != "" {
		t.Errorf("Name() on nil report = %q", r.Name())
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}
