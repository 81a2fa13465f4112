// Package report renders benchmark reports as JSON for tooling or as an
// aligned text table for terminals.
package report

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"gemmbench/internal/bench"
	"gemmbench/internal/shapes"
)

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep *bench.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// WriteTable writes a human-readable result table with a summary footer.
func WriteTable(w io.Writer, rep *bench.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "=== GEMM Benchmark %s ===\n", rep.ID)
	fmt.Fprintf(&b, "Host:     %s/%s, %d CPUs, GOMAXPROCS %d\n",
		rep.System.OS, rep.System.Arch, rep.System.CPUs, rep.System.MaxProcs)
	if len(rep.System.Features) > 0 {
		fmt.Fprintf(&b, "Features: %s\n", strings.Join(rep.System.Features, " "))
	}
	fmt.Fprintf(&b, "Warmup:   %d runs\n", rep.Config.Warmup)
	fmt.Fprintf(&b, "Runs:     %d\n", rep.Config.Runs)
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-24s %-9s %7s %7s %5s %-11s %12s %10s %10s\n",
		"Model", "Role", "N", "K", "M", "Kernel", "Best", "GFLOPS", "GB/s")

	var sumGflops float64
	for _, r := range rep.Results {
		fmt.Fprintf(&b, "%-24s %-9s %7d %7d %5d %-11s %12s %10.2f %10.2f\n",
			r.Model, r.Role, r.N, r.K, r.M, r.Kernel,
			r.Best.Round(time.Microsecond), r.GFLOPS, r.GBps)
		sumGflops += r.GFLOPS
	}

	if n := len(rep.Results); n > 0 {
		fmt.Fprintf(&b, "\n%-24s %66s %10.2f\n", "Avg", "", sumGflops/float64(n))
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Fprintf(&b, "\nMemory: %.1f MB alloc, %.1f MB sys\n",
		float64(mem.Alloc)/(1024*1024),
		float64(mem.Sys)/(1024*1024))

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteShapesTable prints the shape table the benchmarks draw from,
// grouped by architecture.
func WriteShapesTable(w io.Writer, models []shapes.Model) error {
	var b strings.Builder

	roles := shapes.Roles()
	fmt.Fprintf(&b, "%-28s %-9s %7s %7s\n", "Model", "Role", "N", "K")
	for _, m := range models {
		name := m.Name
		if len(m.Aliases) > 0 {
			name = m.Name + " / " + strings.Join(m.Aliases, " / ")
		}
		for i, s := range m.Shapes {
			fmt.Fprintf(&b, "%-28s %-9s %7d %7d\n", name, roles[i], s.N, s.K)
			name = ""
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteShapesJSON writes the shape table as indented JSON.
func WriteShapesJSON(w io.Writer, models []shapes.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models)
}
