package mockstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile sets how many records EnsureSeeded generates per collection
type Profile struct {
	JobOrders          int `yaml:"job_orders"`
	Devices            int `yaml:"devices"`
	TaskEntries        int `yaml:"task_entries"`
	ProductionLogs     int `yaml:"production_logs"`
	TestLogs           int `yaml:"test_logs"`
	QualityInspections int `yaml:"quality_inspections"`
}

// DefaultProfile returns the stock demo dataset sizes
func DefaultProfile() Profile {
	return Profile{
		JobOrders:          30,
		Devices:            200,
		TaskEntries:        500,
		ProductionLogs:     300,
		TestLogs:           150,
		QualityInspections: 100,
	}
}

// LoadProfile reads a YAML profile. Keys missing from the file keep their defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("failed to read seed profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse seed profile %s: %w", path, err)
	}
	if p.JobOrders < 0 || p.Devices < 0 || p.TaskEntries < 0 ||
		p.ProductionLogs < 0 || p.TestLogs < 0 || p.QualityInspections < 0 {
		return p, fmt.Errorf("seed profile %s: counts must not be negative", path)
	}
	return p, nil
}
