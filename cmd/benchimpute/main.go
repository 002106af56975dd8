// Command benchimpute measures streaming throughput of a trained imputer
// filling nulls in generated chunks.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	fr "github.com/wdm0006/imputekit/pkg/frame"
	"github.com/wdm0006/imputekit/pkg/imputer"
	"github.com/wdm0006/imputekit/pkg/logger"
	"github.com/wdm0006/imputekit/pkg/synth"
	std "github.com/wdm0006/imputekit/pkg/transform/standardize"
)

// genSource yields chunks of labelled text rows with a share of labels nulled.
type genSource struct {
	remain int
	chunk  int
	missp  float64
	seed   int64
	rnd    *rand.Rand
}

func (g *genSource) Next() (*fr.Frame, error) {
	if g.remain <= 0 {
		return nil, io.EOF
	}
	n := min(g.chunk, g.remain)
	g.remain -= n
	g.seed++
	f := synth.Strings("text", "label", n, 5, 8, 50, g.seed)
	for i := 0; i < n; i++ {
		if g.rnd.Float64() < g.missp {
			_ = f.SetCell(i, "label", nil)
		}
	}
	return f, nil
}

type blackholeSink struct{ rows int }

func (b *blackholeSink) Write(f *fr.Frame) error { b.rows += f.Rows(); return nil }
func (b *blackholeSink) Close() error            { return nil }

func main() {
	var (
		rows    = flag.Int("rows", 200_000, "total rows to generate")
		chunk   = flag.Int("chunk", 10_000, "rows per chunk")
		train   = flag.Int("train-rows", 2_000, "rows to train the imputer on")
		backend = flag.String("backend", string(imputer.MLP), "mlp or knn")
		missp   = flag.Float64("missing", 0.2, "probability of a missing label")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	log := logger.Setup("warn", *jsonOut)
	ctx := logger.ContextWithLogger(context.Background(), log)

	dir, err := os.MkdirTemp("", "benchimpute")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	im, err := imputer.New(imputer.Config{InputColumns: []string{"text"}, OutputColumn: "label", OutputPath: dir, NumHashBuckets: 1 << 10})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	p := imputer.DefaultParams()
	p.Seed, p.NumEpochs, p.Backend = *seed, 3, imputer.Backend(*backend)
	trainStart := time.Now()
	a, err := im.Fit(ctx, synth.Strings("text", "label", *train, 5, 8, 50, *seed), p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	trainElapsed := time.Since(trainStart)

	pipe := fr.NewPipeline().
		Add(&std.Trim{Column: "text"}).
		Add(&imputer.Fill{Artifact: a})

	src := &genSource{remain: *rows, chunk: *chunk, missp: *missp, seed: *seed, rnd: rand.New(rand.NewSource(*seed))}
	sink := &blackholeSink{}

	runtime.GC()
	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	n, err := fr.RunStream(ctx, pipe, src, sink)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(n) / elapsed.Seconds()
	summary := map[string]any{
		"rows":                  n,
		"backend":               *backend,
		"train_rows":            *train,
		"train_ms":              trainElapsed.Milliseconds(),
		"train_score":           a.Metrics.Score,
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"chunk":                 *chunk,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d\n", n)
	fmt.Printf("Train: %s (score %.3f)\n", trainElapsed, a.Metrics.Score)
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
