// Package shapes holds the canonical table of linear-projection weight
// shapes used to parametrize GEMM benchmarks. Each architecture contributes
// four (output features, input features) pairs, one per projection of a
// transformer block. The table is fixed at build time; accessors return
// copies so callers cannot mutate it.
package shapes

// Shape is the (output features, input features) pair of one projection
// weight matrix.
type Shape struct {
	N int64 `json:"n"`
	K int64 `json:"k"`
}

// Role identifies which projection of a transformer block a shape
// describes, in table order.
type Role int

const (
	// RoleGateUp is the fused gate+up FFN projection. Its output width is
	// twice the intermediate size because gate and up are concatenated.
	RoleGateUp Role = iota
	// RoleDown is the FFN down projection.
	RoleDown
	// RoleQKV is the fused query/key/value projection.
	RoleQKV
	// RoleAttnOut is the attention output projection.
	RoleAttnOut
)

func (r Role) String() string {
	switch r {
	case RoleGateUp:
		return "gate_up"
	case RoleDown:
		return "down"
	case RoleQKV:
		return "qkv"
	case RoleAttnOut:
		return "attn_out"
	default:
		return "unknown"
	}
}

// Model is one architecture block: four projection shapes in role order.
type Model struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Shapes  [4]Shape `json:"shapes"`
}

// The gate+up widths are stored doubled (2 * intermediate size) because the
// gate and up projections run as a single fused matrix.
var table = [...]Model{
	{
		Name:   "llama2-7b",
		Shapes: [4]Shape{{11008 * 2, 4096}, {4096, 11008}, {12288, 4096}, {4096, 4096}},
	},
	{
		Name:    "llama3-8b",
		Aliases: []string{"internlm2.5-7b"},
		Shapes:  [4]Shape{{14336 * 2, 4096}, {4096, 14336}, {6144, 4096}, {4096, 4096}},
	},
	{
		Name:   "internlm2-20b",
		Shapes: [4]Shape{{16384 * 2, 6144}, {6144, 16384}, {8192, 6144}, {6144, 6144}},
	},
	{
		Name:   "glm4-9b",
		Shapes: [4]Shape{{13696 * 2, 4096}, {4096, 13696}, {4608, 4096}, {4096, 4096}},
	},
	{
		Name:   "qwen2-7b",
		Shapes: [4]Shape{{18944 * 2, 3584}, {3584, 18944}, {4608, 3584}, {3584, 3584}},
	},
	{
		Name:   "yi-34b",
		Shapes: [4]Shape{{20480 * 2, 7168}, {7168, 20480}, {9216, 7168}, {7168, 7168}},
	},
	{
		Name:    "llama2-70b",
		Aliases: []string{"llama3-70b"},
		Shapes:  [4]Shape{{28672 * 2, 8192}, {8192, 28672}, {10240, 8192}, {8192, 8192}},
	},
	{
		Name:   "qwen2-72b-instruct-awq",
		Shapes: [4]Shape{{29696 * 2, 8192}, {8192, 29696}, {10240, 8192}, {8192, 8192}},
	},
}

// Models returns the architecture blocks in table order. The returned slice
// is a fresh copy on every call.
func Models() []Model {
	out := make([]Model, len(table))
	for i := range table {
		out[i] = cloneModel(&table[i])
	}
	return out
}

// All returns the 32 shapes flattened in table order.
func All() []Shape {
	out := make([]Shape, 0, len(table)*4)
	for i := range table {
		out = append(out, table[i].Shapes[:]...)
	}
	return out
}

// Roles returns the four projection roles in table order.
func Roles() [4]Role {
	return [4]Role{RoleGateUp, RoleDown, RoleQKV, RoleAttnOut}
}

// ByName looks up a block by architecture name or alias.
func ByName(name string) (Model, bool) {
	for i := range table {
		if table[i].Name == name {
			return cloneModel(&table[i]), true
		}
		for _, alias := range table[i].Aliases {
			if alias == name {
				return cloneModel(&table[i]), true
			}
		}
	}
	return Model{}, false
}

func cloneModel(m *Model) Model {
	out := *m
	if len(m.Aliases) > 0 {
		out.Aliases = append([]string(nil), m.Aliases...)
	}
	return out
}
