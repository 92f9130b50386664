package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario directory doesn't exist.
type ScenarioNotFoundError struct {
	Dir string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenarios directory not found: %s", e.Dir)
}

// FindScenarioFiles walks dir and returns every .yaml or .yml file whose base
// name (without extension) matches the glob filter. An empty filter matches
// everything. Files under a "golden" or "grammars" directory are skipped.
// Results are in lexical order.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Dir: dir}
	}
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (d.Name() == "golden" || d.Name() == "grammars") {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(d.Name(), ext)
			if matched, _ := filepath.Match(filter, name); !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	return files, err
}

// LoadScenarios loads every scenario FindScenarioFiles returns. Load failures
// do not stop the walk; they are returned alongside the scenarios that loaded,
// keyed by file.
func LoadScenarios(dir, filter string) ([]*Scenario, map[string]error, error) {
	files, err := FindScenarioFiles(dir, filter)
	if err != nil {
		return nil, nil, err
	}

	var scenarios []*Scenario
	failures := make(map[string]error)
	for _, path := range files {
		s, err := LoadScenario(path)
		if err != nil {
			failures[path] = err
			continue
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, failures, nil
}
