package inventory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func benchFeed(rows int) string {
	var b strings.Builder
	b.WriteString(feedHeader)
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "SKU-%05d,Item %d,Group %d,%d.25,5,%d\n", i, i, i%12, i%400, i%90)
	}
	return b.String()
}

func BenchmarkImport(b *testing.B) {
	feed := benchFeed(1000)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		im := NewImporter(newMemoryRepo(), ParseZero, logger)
		if _, err := im.Import(context.Background(), strings.NewReader(feed)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkExport(b *testing.B) {
	repo := newMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := NewImporter(repo, ParseZero, logger).Import(context.Background(), strings.NewReader(benchFeed(1000))); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Export(context.Background(), repo, io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
