package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customer-segmentation/internal/synth"
)

func TestRunSegmentation(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "customers.csv")
	table := synth.Generate(synth.Options{Rows: 60, Seed: 11, ReferenceDate: time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, synth.WriteCSV(input, table))

	cfgFile := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf("input: %s\noutput:\n  table: %s\n  charts_dir: %s\nlogging:\n  level: error\n",
		input, filepath.Join(dir, "customer_segments.csv"), dir)
	require.NoError(t, os.WriteFile(cfgFile, []byte(yaml), 0644))

	configPath = cfgFile
	t.Cleanup(func() { configPath = "config.yaml" })

	var out bytes.Buffer
	require.NoError(t, runSegmentation(context.Background(), &out, true))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, fmt.Sprintf("Segmentation complete. Output saved to %s.", filepath.Join(dir, "customer_segments.csv")), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Visualizations saved: "))
	for _, name := range []string{"tier_distribution.png", "spend_distribution.png", "recency_vs_monetary.png"} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, lines[1], name)
	}
}

func TestLoadConfig_Fallback(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { configPath = "config.yaml" })

	cfg, err := loadConfig(false)
	require.NoError(t, err)
	assert.Equal(t, "ecommerce_customers.csv", cfg.Input)

	_, err = loadConfig(true)
	assert.Error(t, err)
}
