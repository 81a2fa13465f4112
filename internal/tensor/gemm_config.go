package tensor

// Default tiles fit the L1/L2 working sets of the projection shapes the
// benchmark sweeps. Tile sizes are part of the config to allow test-time
// sweeps without recompilation.
const (
	defaultTileM = 32
	defaultTileN = 32
	defaultTileK = 16

	maxTileM = 64
	maxTileN = 64
	maxTileK = 64
)

type GemmConfig struct {
	TileM int
	TileN int
	TileK int

	UsePackedB bool
}

func DefaultGemmConfig() GemmConfig {
	return GemmConfig{
		TileM:      defaultTileM,
		TileN:      defaultTileN,
		TileK:      defaultTileK,
		UsePackedB: true,
	}
}

// SelectGemmConfig picks tile sizes for a C[m,n] = A[m,k] * B[k,n] product.
// Deep reductions get a larger TileK so the packed B tile is reused across
// more of the inner loop.
func SelectGemmConfig(m, k, n int) GemmConfig {
	cfg := DefaultGemmConfig()

	switch {
	case k >= 192:
		cfg.TileK = 32
	case k >= 96:
		cfg.TileK = 24
	}

	cfg.TileM = clampTile(cfg.TileM, maxTileM)
	cfg.TileN = clampTile(cfg.TileN, maxTileN)
	cfg.TileK = clampTile(cfg.TileK, maxTileK)

	return cfg
}

func clampTile(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
