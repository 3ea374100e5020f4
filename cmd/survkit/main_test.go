package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"survkit/internal/engine"
	"survkit/internal/formula"
)

func newTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()
	registry = engine.Default()

	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestStrip(t *testing.T) {
	cmd, out := newTestCmd(t)

	require.NoError(t, runStrip(cmd, []string{"Surv(time, status) ~ x + x + x + strata(s)"}))
	assert.Contains(t, out.String(), "formula: Surv(time, status) ~ x + x + x\n")
	assert.Contains(t, out.String(), "strata:  s\n")
}

func TestStrip_JoinsArgs(t *testing.T) {
	cmd, out := newTestCmd(t)

	require.NoError(t, runStrip(cmd, []string{"age", "+", "sex"}))
	assert.Contains(t, out.String(), "formula: age + sex")
	assert.Contains(t, out.String(), "(none)")
}

func TestStrip_ParseError(t *testing.T) {
	cmd, _ := newTestCmd(t)

	err := runStrip(cmd, []string{"x +"})
	var pe *formula.ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestCheck(t *testing.T) {
	t.Run("removable strata passes", func(t *testing.T) {
		cmd, out := newTestCmd(t)
		checkRaw = false
		require.NoError(t, runCheck(cmd, []string{"x + strata(s)"}))
		assert.Equal(t, "OK: x\n", out.String())
	})

	t.Run("nested strata fails", func(t *testing.T) {
		cmd, _ := newTestCmd(t)
		checkRaw = false
		err := runCheck(cmd, []string{"x * (y + strata(s)) + z"})
		assert.True(t, errors.Is(err, formula.ErrConfiguration))
	})

	t.Run("raw mode rejects top-level strata", func(t *testing.T) {
		cmd, _ := newTestCmd(t)
		checkRaw = true
		t.Cleanup(func() { checkRaw = false })
		err := runCheck(cmd, []string{"x + strata(s)"})
		assert.True(t, errors.Is(err, formula.ErrConfiguration))
	})
}

func TestPrepare(t *testing.T) {
	cmd, out := newTestCmd(t)
	prepareEngine = "coxnet"
	prepareParams = []string{"lambda=0.01", "alpha=1"}
	prepareJSON = false
	t.Cleanup(func() { prepareEngine, prepareParams = "", nil })

	require.NoError(t, runPrepare(cmd, []string{"Surv(time, status) ~ age + strata(site)"}))

	got := out.String()
	assert.Contains(t, got, "engine:  coxnet (glmnet)")
	assert.Contains(t, got, "formula: Surv(time, status) ~ age")
	assert.Contains(t, got, "strata:  site")
	assert.Contains(t, got, "  alpha = 1\n")
	assert.Contains(t, got, "  s = 0.01\n")
}

func TestPrepare_JSON(t *testing.T) {
	cmd, out := newTestCmd(t)
	prepareEngine = "rfsrc"
	prepareParams = []string{"num.trees=500"}
	prepareJSON = true
	t.Cleanup(func() { prepareEngine, prepareParams, prepareJSON = "", nil, false })

	require.NoError(t, runPrepare(cmd, []string{"Surv(t, d) ~ age + sex"}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "Surv(t, d) ~ age + sex", decoded["formula"])
	assert.Equal(t, map[string]interface{}{"ntree": float64(500)}, decoded["args"])
}

func TestPrepare_UnknownEngine(t *testing.T) {
	cmd, _ := newTestCmd(t)
	prepareEngine = "nope"
	t.Cleanup(func() { prepareEngine = "" })

	err := runPrepare(cmd, []string{"x"})
	assert.True(t, errors.Is(err, engine.ErrUnknownEngine))
}

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"n=3", "alpha=0.5", "verbose=false", "dist=weibull", " k = 2 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"n":       3,
		"alpha":   0.5,
		"verbose": false,
		"dist":    "weibull",
		"k":       2,
	}, got)

	_, err = parseParams([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseParams([]string{"=1"})
	assert.Error(t, err)

	got, err = parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEngines(t *testing.T) {
	cmd, out := newTestCmd(t)

	require.NoError(t, runEngines(cmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(engine.Builtins())+1)
	assert.Contains(t, lines[0], "ENGINE")
	assert.Contains(t, out.String(), "coxnet")
	assert.Contains(t, out.String(), "lambda")
	assert.Contains(t, out.String(), "randomForestSRC")
}

func TestSetup_AppliesEngineConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: warn
  format: json
engines:
  - id: aorsf
    package: aorsf
    strata: unsupported
    predicts: [crank, distr]
`), 0644))

	configPath = path
	t.Cleanup(func() { configPath = "" })
	t.Setenv("SURVKIT_LOG_LEVEL", "")
	t.Setenv("SURVKIT_LOG_FORMAT", "")

	require.NoError(t, setup())

	d, err := registry.Get("aorsf")
	require.NoError(t, err)
	assert.Equal(t, engine.StrataUnsupported, d.Strata)
	_, err = registry.Get("coxph")
	assert.NoError(t, err)
}

func TestSetup_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	configPath = path
	t.Cleanup(func() { configPath = "" })
	t.Setenv("SURVKIT_LOG_LEVEL", "")

	assert.Error(t, setup())
}
