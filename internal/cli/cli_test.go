package cli

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/randlist/pkg/errors"
	rlio "github.com/matzehuels/randlist/pkg/io"
	"github.com/matzehuels/randlist/pkg/store"
)

const scenario = "A;1\nB;-1\nC;0\n"

// scenarioHex is the encoding of scenario.
const scenarioHex = "03000000" +
	"01000000" + "41" + "01000000" +
	"01000000" + "42" + "ffffffff" +
	"01000000" + "43" + "00000000"

// workdir switches to a fresh directory with no user config.
func workdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	return dir
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// execute runs the CLI with args and returns what commands wrote to their
// output stream.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	// A nil slice would make cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestDefaultRun(t *testing.T) {
	workdir(t)
	writeFile(t, "inlet.in", scenario)

	if _, err := execute(t); err != nil {
		t.Fatalf("default run: %v", err)
	}

	data, err := os.ReadFile("outlet.out")
	if err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(data); got != scenarioHex {
		t.Errorf("outlet.out = %s, want %s", got, scenarioHex)
	}
}

func TestDefaultRunEmptyInput(t *testing.T) {
	workdir(t)
	writeFile(t, "inlet.in", "")

	if _, err := execute(t); err != nil {
		t.Fatalf("default run: %v", err)
	}
	data, _ := os.ReadFile("outlet.out")
	if !bytes.Equal(data, []byte{0, 0, 0, 0}) {
		t.Errorf("outlet.out = %x, want 00000000", data)
	}
}

func TestDefaultRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  errs.Code
	}{
		{"missing input", nil, errs.ErrCodeIO},
		{"cross-reference too large", ptr("A;5\n"), errs.ErrCodeInvalidCrossReference},
		{"missing separator", ptr("A;0\nB\n"), errs.ErrCodeMissingSeparator},
		{"bad index", ptr("A;x\n"), errs.ErrCodeInvalidIndexFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workdir(t)
			if tt.input != nil {
				writeFile(t, "inlet.in", *tt.input)
			}
			_, err := execute(t)
			if !errs.Is(err, tt.want) {
				t.Fatalf("err = %v, want %s", err, tt.want)
			}
			if _, statErr := os.Stat("outlet.out"); tt.input == nil && statErr == nil {
				t.Error("outlet.out written despite missing input")
			}
		})
	}
}

func ptr(s string) *string { return &s }

func TestDefaultRunConfigFile(t *testing.T) {
	workdir(t)
	writeFile(t, "src.txt", scenario)
	writeFile(t, configFileName, "input = \"src.txt\"\noutput = \"out/dst.bin\"\n")

	if _, err := execute(t); err != nil {
		t.Fatalf("default run: %v", err)
	}
	info, err := os.Stat(filepath.Join("out", "dst.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 31 {
		t.Errorf("size = %d, want 31", info.Size())
	}
}

func TestEncodeDecode(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)

	if _, err := execute(t, "encode", "in.txt", "out.bin"); err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := execute(t, "decode", "out.bin", "--format", "text", "-o", "back.txt"); err != nil {
		t.Fatalf("decode text: %v", err)
	}
	back, _ := os.ReadFile("back.txt")
	if string(back) != scenario {
		t.Errorf("decoded text = %q, want %q", back, scenario)
	}

	out, err := execute(t, "decode", "out.bin")
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	for _, want := range []string{`"data": "A"`, `"cross_ref": -1`} {
		if !strings.Contains(out, want) {
			t.Errorf("json output missing %s:\n%s", want, out)
		}
	}

	out, err = execute(t, "decode", "out.bin", "-f", "table")
	if err != nil {
		t.Fatalf("decode table: %v", err)
	}
	if !strings.Contains(out, "Rand data") {
		t.Errorf("table output missing header:\n%s", out)
	}
}

func TestDecodeToFile(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)
	if _, err := execute(t, "encode", "in.txt", "out.bin"); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "decode", "out.bin", "-o", "back.json"); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	f, err := os.Open("back.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	back, err := rlio.ReadJSON(f)
	if err != nil {
		t.Fatalf("back.json does not parse: %v", err)
	}
	if back.Len() != 3 || back.CrossRefCount() != 2 {
		t.Errorf("back.json = %d nodes, %d cross-refs", back.Len(), back.CrossRefCount())
	}

	if _, err := execute(t, "decode", "out.bin", "-f", "table", "-o", "back.table"); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	if table, _ := os.ReadFile("back.table"); !strings.Contains(string(table), "Rand data") {
		t.Errorf("back.table missing header:\n%s", table)
	}
}

func TestDecodeTextRejectsNewlinePayload(t *testing.T) {
	workdir(t)
	// One node holding "a\nb" without a cross-reference.
	stream, _ := hex.DecodeString("01000000" + "03000000" + "610a62" + "ffffffff")
	writeFile(t, "multi.bin", string(stream))

	_, err := execute(t, "decode", "multi.bin", "-f", "text", "-o", "multi.txt")
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("err = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
	if _, statErr := os.Stat("multi.txt"); statErr == nil {
		t.Error("multi.txt written despite the error")
	}
	if _, err := execute(t, "decode", "multi.bin"); err != nil {
		t.Errorf("json decode of the same stream: %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	workdir(t)
	writeFile(t, "short.bin", "\x02\x00\x00\x00\x01\x00")

	if _, err := execute(t, "decode", "short.bin", "--format", "svg"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unsupported format: err = %v", err)
	}
	if _, err := execute(t, "decode", "short.bin"); !errs.Is(err, errs.ErrCodeTruncatedStream) {
		t.Errorf("truncated: err = %v", err)
	}
	if _, err := execute(t, "decode", "absent.bin"); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestMaxNodesFlag(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", "A;1\nB;0\nC;0\n")

	if _, err := execute(t, "--max-nodes", "2", "encode", "in.txt", "out.bin"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	info, _ := os.Stat("out.bin")
	if info.Size() != 22 {
		t.Errorf("size = %d, want 22 (two nodes)", info.Size())
	}

	if _, err := execute(t, "--max-nodes", "0", "encode", "in.txt", "out.bin"); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("zero limit: err = %v", err)
	}
}

func TestVerify(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)
	writeFile(t, "other.txt", "A;1\nB;-1\nC;1\n")

	if _, err := execute(t, "encode", "in.txt", "in.bin"); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "encode", "other.txt", "other.bin"); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "verify", "in.txt", "in.bin"); err != nil {
		t.Errorf("verify matching: %v", err)
	}
	_, err := execute(t, "verify", "in.txt", "other.bin")
	if !errs.Is(err, errs.ErrCodeCrossReferenceMismatch) {
		t.Errorf("verify different: err = %v, want %s", err, errs.ErrCodeCrossReferenceMismatch)
	}
}

func TestRoundtrip(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)

	if _, err := execute(t, "roundtrip", "in.txt"); err != nil {
		t.Fatalf("in-memory roundtrip: %v", err)
	}
	if _, err := os.Stat("lists"); err == nil {
		t.Error("in-memory roundtrip wrote to the store")
	}

	if _, err := execute(t, "roundtrip", "in.txt", "--key", "lists/in.bin"); err != nil {
		t.Fatalf("stored roundtrip: %v", err)
	}
	if _, err := os.Stat(filepath.Join("lists", "in.bin")); err != nil {
		t.Errorf("stored roundtrip: %v", err)
	}
}

func TestRoundtripCancelled(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)
	status := captureStatus(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := executeContext(t, ctx, "roundtrip", "in.txt", "--key", "lists/in.bin")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if strings.Contains(status.String(), "failed") {
		t.Errorf("cancellation reported as a failure: %q", status.String())
	}
	if _, err := os.Stat(filepath.Join("lists", "in.bin")); err == nil {
		t.Error("cancelled roundtrip wrote to the store")
	}
}

func TestInspect(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)
	if _, err := execute(t, "encode", "in.txt", "in.bin"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "inspect", "in.bin")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Data", "A", "B", "C"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDOT(t *testing.T) {
	workdir(t)
	writeFile(t, "in.txt", scenario)
	if _, err := execute(t, "encode", "in.txt", "in.bin"); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "render", "in.bin", "-o", "in.dot"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, _ := os.ReadFile("in.dot")
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("in.dot does not start with digraph:\n%s", dot)
	}

	if _, err := execute(t, "render", "in.bin", "-o", "in.png"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("png: err = %v", err)
	}
}

func TestStoreCommands(t *testing.T) {
	dir := workdir(t)
	writeFile(t, "in.txt", scenario)
	if _, err := execute(t, "encode", "in.txt", "in.bin"); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "store", "put", "lists/a.bin", "in.bin"); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, err := execute(t, "store", "path", "lists/a.bin")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join("lists", "a.bin") {
		t.Errorf("path = %q (dir %s)", got, dir)
	}

	if _, err := execute(t, "store", "get", "lists/a.bin", "-o", "copy.bin"); err != nil {
		t.Fatalf("get: %v", err)
	}
	orig, _ := os.ReadFile("in.bin")
	copied, _ := os.ReadFile("copy.bin")
	if !bytes.Equal(orig, copied) {
		t.Error("get returned different bytes")
	}

	if _, err := execute(t, "store", "delete", "lists/a.bin"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := execute(t, "store", "get", "lists/a.bin"); !store.IsNotFound(err) {
		t.Errorf("get after delete: err = %v", err)
	}

	writeFile(t, "junk.bin", "\x05\x00")
	if _, err := execute(t, "store", "put", "lists/junk", "junk.bin"); !errs.Is(err, errs.ErrCodeTruncatedStream) {
		t.Errorf("put junk: err = %v", err)
	}
	if _, err := execute(t, "store", "path", "../escape"); !errs.Is(err, errs.ErrCodeInvalidKey) {
		t.Errorf("path escape: err = %v", err)
	}
	if _, err := execute(t, "--backend", "memory", "store", "path"); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("path on memory: err = %v", err)
	}
}

func TestUnknownBackend(t *testing.T) {
	workdir(t)
	if _, err := execute(t, "--backend", "floppy", "store", "delete", "x"); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want %s", err, errs.ErrCodeInvalidConfig)
	}
}

func TestArgOr(t *testing.T) {
	args := []string{"a", ""}
	if got := argOr(args, 0, "x"); got != "a" {
		t.Errorf("argOr(0) = %q", got)
	}
	if got := argOr(args, 1, "x"); got != "x" {
		t.Errorf("argOr(1) = %q", got)
	}
	if got := argOr(args, 5, "x"); got != "x" {
		t.Errorf("argOr(5) = %q", got)
	}
}

func TestCompletion(t *testing.T) {
	workdir(t)
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "__start_randlist") {
		t.Errorf("bash completion does not define __start_randlist:\n%.200s", out)
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("tcsh: expected error")
	}
}
