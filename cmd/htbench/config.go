package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// workload describes one benchmark run. It can be loaded from YAML and is
// then overridden by any flag given explicitly on the command line.
type workload struct {
	Workers   int           `yaml:"workers"`
	Ops       int           `yaml:"ops"`
	Keys      int           `yaml:"keys"`
	InsertPct int           `yaml:"insert_pct"`
	StealPct  int           `yaml:"steal_pct"`
	Seed      int64         `yaml:"seed"`
	Budget    uint64        `yaml:"budget_bytes"` // per-table allocator limit; 0 = unlimited
	Identity  bool          `yaml:"identity"`     // use the identity-keyed specialization
	Verify    bool          `yaml:"verify"`       // check every result against a shadow map
	Duration  time.Duration `yaml:"max_duration"` // 0 = run all ops
}

func defaultWorkload() workload {
	return workload{
		Workers:   4,
		Ops:       1_000_000,
		Keys:      100_000,
		InsertPct: 45,
		StealPct:  15,
		Seed:      1,
	}
}

// loadWorkload decodes a YAML file over the defaults.
func loadWorkload(path string) (workload, error) {
	w := defaultWorkload()
	if path == "" {
		return w, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return w, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(buf, &w); err != nil {
		return w, errors.Wrapf(err, "parse config %s", path)
	}
	return w, nil
}

func (w workload) validate() error {
	switch {
	case w.Workers <= 0:
		return errors.New("workers must be > 0")
	case w.Keys <= 0:
		return errors.New("keys must be > 0")
	case w.Ops < 0:
		return errors.New("ops must be >= 0")
	case w.InsertPct < 0 || w.StealPct < 0 || w.InsertPct+w.StealPct > 100:
		return errors.Errorf("insert_pct (%d) + steal_pct (%d) must be within [0, 100]", w.InsertPct, w.StealPct)
	}
	return nil
}
