package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"gemmbench/internal/bench"
	"gemmbench/internal/shapes"
)

func sampleReport() *bench.Report {
	return &bench.Report{
		ID:        "11111111-2222-3333-4444-555555555555",
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Config:    bench.DefaultConfig(),
		System:    bench.CollectSystem(),
		Results: []bench.Result{
			{
				Model:  "llama2-7b",
				Role:   "gate_up",
				N:      22016,
				K:      4096,
				M:      1,
				Kernel: "f32-matvec",
				Best:   1500 * time.Microsecond,
				Avg:    1600 * time.Microsecond,
				GFLOPS: 120.25,
				GBps:   240.5,
			},
		},
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded bench.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.ID != sampleReport().ID {
		t.Fatalf("id = %s", decoded.ID)
	}
	if len(decoded.Results) != 1 || decoded.Results[0].GFLOPS != 120.25 {
		t.Fatalf("results mangled: %+v", decoded.Results)
	}
}

func TestWriteTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteTable(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"llama2-7b", "gate_up", "f32-matvec", "120.25", "GFLOPS", "Memory:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteShapesTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteShapesTable(&buf, shapes.Models()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "llama3-8b / internlm2.5-7b") {
		t.Fatalf("aliased block name missing:\n%s", out)
	}
	if !strings.Contains(out, "22016") || !strings.Contains(out, "29696") {
		t.Fatal("expected table values missing")
	}
	// Header plus 32 shape rows.
	if lines := strings.Count(strings.TrimRight(out, "\n"), "\n") + 1; lines != 33 {
		t.Fatalf("expected 33 lines, got %d", lines)
	}
}

func TestWriteShapesJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := WriteShapesJSON(&buf, shapes.Models()); err != nil {
		t.Fatal(err)
	}
	var decoded []shapes.Model
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 8 {
		t.Fatalf("expected 8 models, got %d", len(decoded))
	}
	if decoded[0].Shapes[0] != (shapes.Shape{N: 22016, K: 4096}) {
		t.Fatalf("first shape mangled: %+v", decoded[0].Shapes[0])
	}
}
