package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"customer-segmentation/internal/report"
	"customer-segmentation/internal/synth"
)

func BenchmarkRun(b *testing.B) {
	for _, rows := range []int{300, 3000} {
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			dir := b.TempDir()
			input := filepath.Join(dir, "ecommerce_customers.csv")
			table := synth.Generate(synth.Options{Rows: rows, Seed: 42, ReferenceDate: reference})
			if err := synth.WriteCSV(input, table); err != nil {
				b.Fatalf("Failed to write input: %v", err)
			}
			cfg := testConfig(dir, input)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				result, err := Run(context.Background(), cfg, Options{Sink: report.NopSink{}})
				if err != nil {
					b.Fatalf("Run failed: %v", err)
				}
				if i == 0 {
					b.Logf("Result: inertia=%.3f p95 stage=%v total=%v", result.Inertia, result.P95Stage, result.TotalTime)
				}
			}
		})
	}
}
