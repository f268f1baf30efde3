package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/magserde/magic"
	"github.com/chazu/magserde/serde/cborfmt"
	"github.com/chazu/magserde/serde/msgpackfmt"
	"github.com/chazu/magserde/vm"
)

func tunneledDoc(t *testing.T) map[string]any {
	t.Helper()
	v := vm.NewVM()
	scope := v.OpenScope()
	t.Cleanup(func() { scope.Close() })

	l, err := scope.NewLocal(vm.FromSmallInt(7))
	if err != nil {
		t.Fatal(err)
	}
	return map[string]any{
		"h": magic.FromLocal(l),
		"n": int64(1),
	}
}

func TestRunCBOR(t *testing.T) {
	data, err := cborfmt.Marshal(tunneledDoc(t))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "doc.cbor")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", t.TempDir(), path}, nil, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "handle $.h: scope=1 slot=0") {
		t.Errorf("stdout missing handle line:\n%s", stdout.String())
	}
}

func TestRunMsgpackStrict(t *testing.T) {
	data, err := msgpackfmt.Marshal(tunneledDoc(t))
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", t.TempDir(), "-format", "msgpack", "-strict"}, bytes.NewReader(data), &stdout, &stderr)
	if code != 2 {
		t.Fatalf("exit code = %d, want 2; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "handle $.h:") {
		t.Errorf("stdout missing handle line:\n%s", stdout.String())
	}
}

func TestRunClean(t *testing.T) {
	data, err := msgpackfmt.Marshal(map[string]any{"a": []any{int64(1), "x"}})
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", t.TempDir(), "-format", "msgpack", "-strict"}, bytes.NewReader(data), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "no tunneled values") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunUsesCodecConfig(t *testing.T) {
	dir := t.TempDir()
	config := "[codec]\nformat = \"msgpack\"\nfast-path = false\ncanonical = false\n"
	if err := os.WriteFile(filepath.Join(dir, "magserde.toml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	data, err := msgpackfmt.Marshal(tunneledDoc(t))
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", dir}, bytes.NewReader(data), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "handle $.h:") {
		t.Errorf("stdout missing handle line:\n%s", stdout.String())
	}

	// The same config decodes a CBOR handle tag without the fast path.
	data, err = cborfmt.Marshal(tunneledDoc(t))
	if err != nil {
		t.Fatal(err)
	}
	stdout.Reset()
	code = run([]string{"-config", dir, "-format", "cbor"}, bytes.NewReader(data), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("cbor: exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "handle $.h: scope=1 slot=0") {
		t.Errorf("cbor: stdout missing handle line:\n%s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		input string
	}{
		{"empty input", nil, ""},
		{"unknown format", []string{"-format", "xml"}, "x"},
		{"garbage cbor", []string{"-format", "cbor"}, "\xff\xff"},
		{"too many args", []string{"a", "b"}, ""},
		{"msgpack trailing data", []string{"-format", "msgpack"}, "\xa1x\xc0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-config", t.TempDir()}, tt.args...)
			var stdout, stderr bytes.Buffer
			if code := run(args, strings.NewReader(tt.input), &stdout, &stderr); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
		})
	}
}
