package input

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/core/matcher"
	"github.com/attunepartners/prefix-match/internal/platform/logger"
)

func writeFile(t *testing.T, name, content string, gzipped bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()

	if gzipped {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write([]byte(content)); err != nil {
			t.Fatalf("gzip write: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
		return path
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestOpen_PlainAndGzip(t *testing.T) {
	content := "line one\nline two\nline three"
	for _, gzipped := range []bool{false, true} {
		path := writeFile(t, "data.txt", content, gzipped)
		lines, err := ReadAllLines(path)
		if err != nil {
			t.Fatalf("gzipped=%v: %v", gzipped, err)
		}
		if len(lines) != 3 || lines[1] != "line two" {
			t.Fatalf("gzipped=%v: lines = %v", gzipped, lines)
		}
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	b := catalog.NewBuilder(catalog.Options{}, logger.Named("input_test"))
	b.AddRecord("cnn com politics\tNP001\tnews_politics")
	b.AddRecord("espn com\tNS001\tnews_sports")
	return b.Seal()
}

func TestRunBatch_OutputFormat(t *testing.T) {
	cat := testCatalog(t)
	lines := []string{
		"https://cnn.com/politics/article-1",
		"nothing here",
		"ESPN.COM/nba",
	}

	var buf bytes.Buffer
	stats, err := RunBatch(cat, lines, BatchOptions{Workers: 2, Flags: matcher.Flags{Matching: true}}, &buf)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if stats.Lines != 3 || stats.Matches != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(out) != 2 {
		t.Fatalf("output lines = %d: %q", len(out), buf.String())
	}
	want0 := "=\tNP001\tnews_politics\tcnn com politics\tcnn.com/politics\thttps://cnn.com/politics/article-1"
	if out[0] != want0 {
		t.Fatalf("line 0 = %q\nwant     %q", out[0], want0)
	}
	if !strings.HasPrefix(out[1], "=\tNS001\tnews_sports\tespn com\tESPN.COM\t") {
		t.Fatalf("line 1 = %q", out[1])
	}
}

func TestRunBatch_LineNumbersWithoutMatching(t *testing.T) {
	cat := testCatalog(t)
	lines := []string{"espn.com", "x", "espn.com"}

	var buf bytes.Buffer
	if _, err := RunBatch(cat, lines, BatchOptions{Workers: 1}, &buf); err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(out) != 2 {
		t.Fatalf("output lines = %d", len(out))
	}
	if !strings.Contains(out[0], "\t1\t") || !strings.Contains(out[1], "\t3\t") {
		t.Fatalf("expected 1-based line numbers, got %q and %q", out[0], out[1])
	}
}

func TestRunBatch_DeterministicAcrossWorkerCounts(t *testing.T) {
	cat := testCatalog(t)
	lines := make([]string, 0, 200)
	for i := 0; i < 100; i++ {
		lines = append(lines, "cnn.com/politics/item", "filler text")
	}

	var one, many bytes.Buffer
	if _, err := RunBatch(cat, lines, BatchOptions{Workers: 1, Flags: matcher.Flags{Matching: true}}, &one); err != nil {
		t.Fatalf("workers=1: %v", err)
	}
	if _, err := RunBatch(cat, lines, BatchOptions{Workers: 8, Flags: matcher.Flags{Matching: true}}, &many); err != nil {
		t.Fatalf("workers=8: %v", err)
	}
	if one.String() != many.String() {
		t.Fatalf("output depends on worker count")
	}
}
