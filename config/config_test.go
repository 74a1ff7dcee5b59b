package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePlusArgsSplitsKeyValueAndBareFlags(t *testing.T) {
	got := ParsePlusArgs([]string{
		"+toplevel=my_dut",
		"+dump_vcd",
		"not-a-plusarg",
		"+seed=1234",
	})

	require.Equal(t, map[string]string{
		"toplevel": "my_dut",
		"dump_vcd": "",
		"seed":     "1234",
	}, got)
}

func TestParsePlusArgsEmptyInput(t *testing.T) {
	got := ParsePlusArgs(nil)
	require.Empty(t, got)
}

func TestLoadAppliesDefaultsWithNoEnv(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), cfg.RandomSeed)
	require.False(t, cfg.UserCoverage)
	require.False(t, cfg.SchedulerDebug)
}

func TestLoadReadsLegacyEnvNameFallback(t *testing.T) {
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.RandomSeed)
}

func TestLoadCarriesPlusArgsFromExtraArgs(t *testing.T) {
	cfg, err := Load([]string{"+toplevel=top"})
	require.NoError(t, err)
	require.Equal(t, "top", cfg.PlusArgs["toplevel"])
}
