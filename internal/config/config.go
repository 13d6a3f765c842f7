package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DateLayout = "2006-01-02"

type Config struct {
	Input        string       `yaml:"input"`
	Output       Output       `yaml:"output"`
	Segmentation Segmentation `yaml:"segmentation"`
	Export       Export       `yaml:"export"`
	Logging      Logging      `yaml:"logging"`
}

type Output struct {
	Table             string `yaml:"table"`
	ChartsDir         string `yaml:"charts_dir"`
	TierDistribution  string `yaml:"tier_distribution"`
	SpendDistribution string `yaml:"spend_distribution"`
	RecencyVsMonetary string `yaml:"recency_vs_monetary"`
	Workbook          string `yaml:"workbook"`
}

type Segmentation struct {
	ReferenceDate string  `yaml:"reference_date"`
	Clusters      int     `yaml:"clusters"`
	Seed          int64   `yaml:"seed"`
	Restarts      int     `yaml:"restarts"`
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

type Export struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Reset drops previously exported segments before the run writes its own.
	Reset bool `yaml:"reset"`
}

type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig mirrors the fixed constants of the segmentation job.
func DefaultConfig() *Config {
	return &Config{
		Input: "ecommerce_customers.csv",
		Output: Output{
			Table:             "customer_segments.csv",
			ChartsDir:         ".",
			TierDistribution:  "tier_distribution.png",
			SpendDistribution: "spend_distribution.png",
			RecencyVsMonetary: "recency_vs_monetary.png",
		},
		Segmentation: Segmentation{
			ReferenceDate: "2025-08-15",
			Clusters:      3,
			Seed:          42,
			Restarts:      10,
			MaxIterations: 300,
			Tolerance:     1e-4,
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if c.Output.Table == "" {
		return fmt.Errorf("output table path is required")
	}
	if c.Output.TierDistribution == "" || c.Output.SpendDistribution == "" || c.Output.RecencyVsMonetary == "" {
		return fmt.Errorf("all three chart file names are required")
	}
	if _, err := c.ReferenceDate(); err != nil {
		return err
	}
	s := c.Segmentation
	if s.Clusters != 3 {
		return fmt.Errorf("segmentation.clusters must be 3, got %d", s.Clusters)
	}
	if s.Restarts < 1 {
		return fmt.Errorf("segmentation.restarts must be at least 1, got %d", s.Restarts)
	}
	if s.MaxIterations < 1 {
		return fmt.Errorf("segmentation.max_iterations must be at least 1, got %d", s.MaxIterations)
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("segmentation.tolerance must not be negative, got %g", s.Tolerance)
	}
	switch c.Export.Driver {
	case "":
	case "postgres", "mysql", "sqlite", "mongo":
		if c.Export.DSN == "" {
			return fmt.Errorf("export.dsn is required for driver %s", c.Export.Driver)
		}
	default:
		return fmt.Errorf("unsupported export driver: %s", c.Export.Driver)
	}
	return nil
}

func (c *Config) ReferenceDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.Segmentation.ReferenceDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid segmentation.reference_date %q: %w", c.Segmentation.ReferenceDate, err)
	}
	return t, nil
}

// ChartPaths returns the three chart files in render order.
func (c *Config) ChartPaths() []string {
	return []string{
		filepath.Join(c.Output.ChartsDir, c.Output.TierDistribution),
		filepath.Join(c.Output.ChartsDir, c.Output.SpendDistribution),
		filepath.Join(c.Output.ChartsDir, c.Output.RecencyVsMonetary),
	}
}
