package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/benchdef/pkg/errors"
)

func TestOpenOutputStdout(t *testing.T) {
	out, err := openOutput("")
	if err != nil {
		t.Fatalf("openOutput(\"\") error: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Errorf("stdout close should be a no-op, got %v", err)
	}
}

func TestOpenOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	out, err := openOutput(path)
	if err != nil {
		t.Fatalf("openOutput(%q) error: %v", path, err)
	}
	if _, err := out.Write([]byte("data")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "data" {
		t.Errorf("file content = %q, want %q", data, "data")
	}
}

func TestReportValidationList(t *testing.T) {
	list := &errors.List{}
	list.Append(errors.New(errors.ErrCodeMissingVersion, "entry %q has no version", "a"))
	list.Append(errors.New(errors.ErrCodeUnknownParent, "entry %q extends unknown parent %q", "b", "c"))

	err := reportValidation(list.ErrOrNil())
	if err == nil {
		t.Fatal("reportValidation() should return an error")
	}
	if !strings.Contains(err.Error(), "2 invalid entries") {
		t.Errorf("err = %q, want the entry count", err)
	}
}

func TestReportValidationSingle(t *testing.T) {
	err := reportValidation(errors.New(errors.ErrCodeInvalidDocument, "bad yaml"))
	if err == nil {
		t.Fatal("reportValidation() should return an error")
	}
	if err.Error() != "validation failed" {
		t.Errorf("err = %q, want %q", err, "validation failed")
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "auto", "auto"},
		{"nil", nil, "null"},
		{"int", 2000, "2000"},
		{"float", 0.5, "0.5"},
		{"bool", true, "true"},
		{"list", []any{"a", "b"}, `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatParam(tt.in); got != tt.want {
				t.Errorf("formatParam(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
