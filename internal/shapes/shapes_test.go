package shapes

import (
	"reflect"
	"testing"
)

func TestAllCount(t *testing.T) {
	t.Parallel()
	got := All()
	if len(got) != 32 {
		t.Fatalf("expected 32 shapes, got %d", len(got))
	}
}

func TestModelsGrouping(t *testing.T) {
	t.Parallel()
	models := Models()
	if len(models) != 8 {
		t.Fatalf("expected 8 architecture blocks, got %d", len(models))
	}

	// The flattened view must equal the blocks concatenated in order.
	flat := All()
	for i, m := range models {
		for j, s := range m.Shapes {
			if flat[i*4+j] != s {
				t.Fatalf("All()[%d] = %v, want %v (model %s role %s)",
					i*4+j, flat[i*4+j], s, m.Name, Roles()[j])
			}
		}
	}
}

func TestAllComponentsPositive(t *testing.T) {
	t.Parallel()
	for i, s := range All() {
		if s.N <= 0 || s.K <= 0 {
			t.Fatalf("shape %d has non-positive component: %+v", i, s)
		}
	}
}

func TestSpotChecks(t *testing.T) {
	t.Parallel()
	flat := All()
	if flat[0] != (Shape{N: 22016, K: 4096}) {
		t.Fatalf("element 0 = %+v, want {22016 4096}", flat[0])
	}
	if flat[31] != (Shape{N: 8192, K: 8192}) {
		t.Fatalf("element 31 = %+v, want {8192 8192}", flat[31])
	}
}

func TestAccessIdempotent(t *testing.T) {
	t.Parallel()
	first := All()
	second := All()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("consecutive All() calls returned different sequences")
	}

	// Mutating a returned copy must not leak into the table.
	first[0].N = -1
	if got := All()[0]; got != (Shape{N: 22016, K: 4096}) {
		t.Fatalf("table mutated through returned slice: %+v", got)
	}

	models := Models()
	models[0].Name = "clobbered"
	models[0].Shapes[0].K = -1
	if got := Models()[0]; got.Name != "llama2-7b" || got.Shapes[0].K != 4096 {
		t.Fatalf("table mutated through Models() copy: %+v", got)
	}
}

func TestByName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"llama2-7b", "llama2-7b", true},
		{"llama3-8b", "llama3-8b", true},
		{"internlm2.5-7b", "llama3-8b", true},
		{"llama3-70b", "llama2-70b", true},
		{"qwen2-72b-instruct-awq", "qwen2-72b-instruct-awq", true},
		{"qwen2-72b", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		m, ok := ByName(tc.query)
		if ok != tc.ok {
			t.Fatalf("ByName(%q) ok = %v, want %v", tc.query, ok, tc.ok)
		}
		if ok && m.Name != tc.want {
			t.Fatalf("ByName(%q) = %s, want %s", tc.query, m.Name, tc.want)
		}
	}
}

func TestDuplicatesAllowed(t *testing.T) {
	t.Parallel()
	// Repeated shapes across blocks are part of the contract, e.g. the
	// square attention output projections of the two 70B-class tables.
	seen := map[Shape]int{}
	for _, s := range All() {
		seen[s]++
	}
	if seen[Shape{N: 10240, K: 8192}] != 2 {
		t.Fatalf("expected shape {10240 8192} twice, got %d", seen[Shape{N: 10240, K: 8192}])
	}
	if seen[Shape{N: 4096, K: 4096}] < 2 {
		t.Fatal("expected recurring {4096 4096} shape")
	}
}

func TestRoleStrings(t *testing.T) {
	t.Parallel()
	want := [4]string{"gate_up", "down", "qkv", "attn_out"}
	for i, r := range Roles() {
		if r.String() != want[i] {
			t.Fatalf("role %d = %q, want %q", i, r.String(), want[i])
		}
	}
	if Role(99).String() != "unknown" {
		t.Fatalf("out-of-range role = %q", Role(99).String())
	}
}
