package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// benchCorpus writes a file of `lines` lines where one in ten carries
// the needle, mirroring the word-frequency shape the tool is tuned for.
func benchCorpus(b *testing.B, lines int) string {
	b.Helper()
	var sb strings.Builder
	for i := 0; i < lines; i++ {
		if i%10 == 0 {
			fmt.Fprintf(&sb, "line %d carries the needle token for matching\n", i)
		} else {
			fmt.Fprintf(&sb, "line %d is ordinary filler text with no interest\n", i)
		}
	}
	path := filepath.Join(b.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		b.Fatalf("write corpus: %v", err)
	}
	return path
}

// BenchmarkSearchWorkers compares the sequential path against the
// worker-pool pipeline at increasing worker counts.
func BenchmarkSearchWorkers(b *testing.B) {
	path := benchCorpus(b, 100000)
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.Search(ctx, Request{
					Path:    path,
					Pattern: "needle",
					Workers: workers,
				}); err != nil {
					b.Fatalf("search failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkSearchChunkSize sweeps the batch size at a fixed worker count.
func BenchmarkSearchChunkSize(b *testing.B) {
	path := benchCorpus(b, 100000)
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	for _, chunkSize := range []int{10, 100, 1000, 10000} {
		b.Run(fmt.Sprintf("chunk_%d", chunkSize), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.Search(ctx, Request{
					Path:      path,
					Pattern:   "needle",
					ChunkSize: chunkSize,
					Workers:   4,
				}); err != nil {
					b.Fatalf("search failed: %v", err)
				}
			}
		})
	}
}

// BenchmarkSearchIgnoreCase measures the cost of per-line folding.
func BenchmarkSearchIgnoreCase(b *testing.B) {
	path := benchCorpus(b, 50000)
	e, err := New()
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	for _, ignoreCase := range []bool{false, true} {
		b.Run(fmt.Sprintf("ignore_case_%v", ignoreCase), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.Search(ctx, Request{
					Path:       path,
					Pattern:    "NEEDLE",
					IgnoreCase: ignoreCase,
					Workers:    4,
				}); err != nil {
					b.Fatalf("search failed: %v", err)
				}
			}
		})
	}
}
