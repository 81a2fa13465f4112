package bench

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// SystemInfo captures the host characteristics that move benchmark numbers.
type SystemInfo struct {
	OS       string   `json:"os"`
	Arch     string   `json:"arch"`
	CPUs     int      `json:"cpus"`
	MaxProcs int      `json:"max_procs"`
	Features []string `json:"features,omitempty"`
}

func CollectSystem() SystemInfo {
	return SystemInfo{
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		CPUs:     runtime.NumCPU(),
		MaxProcs: runtime.GOMAXPROCS(0),
		Features: cpuFeatures(),
	}
}

func cpuFeatures() []string {
	var out []string
	if cpu.X86.HasAVX2 {
		out = append(out, "avx2")
	}
	if cpu.X86.HasFMA {
		out = append(out, "fma")
	}
	if cpu.X86.HasAVX512F {
		out = append(out, "avx512f")
	}
	if cpu.ARM64.HasASIMD {
		out = append(out, "asimd")
	}
	if cpu.ARM64.HasSVE {
		out = append(out, "sve")
	}
	return out
}
