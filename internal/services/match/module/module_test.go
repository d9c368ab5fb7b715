package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/attunepartners/prefix-match/internal/platform/config"
	"github.com/attunepartners/prefix-match/internal/platform/logger"
)

func writePatterns(t *testing.T, gzipped bool) string {
	t.Helper()
	content := "cnn com politics\tNP001\tnews_politics\n" +
		"# comment\n" +
		"espn com\tNS001\tnews_sports\n"

	name := "patterns.txt"
	if gzipped {
		name = "patterns.txt.gz"
	}
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = f.Close() }()

	if gzipped {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write([]byte(content)); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := gz.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		return path
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestBuildCatalog_PlainAndGzip(t *testing.T) {
	for _, gzipped := range []bool{false, true} {
		cat, err := BuildCatalog(Options{PatternsPath: writePatterns(t, gzipped)}, logger.Named("module_test"))
		if err != nil {
			t.Fatalf("gzipped=%v: %v", gzipped, err)
		}
		if cat.PatternCount() != 2 {
			t.Fatalf("gzipped=%v: patterns = %d", gzipped, cat.PatternCount())
		}
	}
}

func TestBuildCatalog_WithStopwords(t *testing.T) {
	sw := filepath.Join(t.TempDir(), "stopwords.txt")
	if err := os.WriteFile(sw, []byte("the, and, of"), 0o600); err != nil {
		t.Fatalf("write stopwords: %v", err)
	}

	pf := filepath.Join(t.TempDir(), "patterns.txt")
	if err := os.WriteFile(pf, []byte("the daily news\tD1\tnews\n"), 0o600); err != nil {
		t.Fatalf("write patterns: %v", err)
	}

	cat, err := BuildCatalog(Options{
		PatternsPath:    pf,
		StopwordsPath:   sw,
		RemoveStopwords: true,
	}, logger.Named("module_test"))
	if err != nil {
		t.Fatalf("BuildCatalog: %v", err)
	}
	if got := cat.DisplayText(1); got != "daily news" {
		t.Fatalf("display text = %q", got)
	}
}

func TestBuildCatalog_MissingPatterns(t *testing.T) {
	if _, err := BuildCatalog(Options{}, nil); err == nil {
		t.Fatalf("expected error without a pattern file")
	}
	if _, err := BuildCatalog(Options{PatternsPath: "/nonexistent/patterns.txt"}, nil); err == nil {
		t.Fatalf("expected error for unreadable pattern file")
	}
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_MATCH_PATTERNS", "/data/patterns.txt.gz")
	t.Setenv("CORE_MATCH_LCSS", "true")
	t.Setenv("CORE_MATCH_WORKERS", "8")

	opts := FromConfig(config.New())
	if opts.PatternsPath != "/data/patterns.txt.gz" {
		t.Fatalf("patterns = %q", opts.PatternsPath)
	}
	if !opts.LCSS || opts.Workers != 8 {
		t.Fatalf("opts = %+v", opts)
	}
	if !opts.Matching {
		t.Fatalf("matching should default true")
	}
}
