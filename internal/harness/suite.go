package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindScenarios returns every .yaml and .yml file under dir, sorted. A
// non-empty filter is a glob matched against the file name without its
// extension. Files under golden directories are skipped.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// GoldenPath is where the golden trace of a scenario file lives: a golden
// directory next to the scenario.
func GoldenPath(scenarioFile string) string {
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(scenarioFile), "golden", name+".golden")
}

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure is one scenario that did not pass.
type SuiteFailure struct {
	ScenarioPath string   `json:"scenario_path"`
	Errors       []string `json:"errors"`
}

// RunSuite loads and runs every scenario under dir. Scenarios that fail to
// load or run count as failures; the error is reserved for an unreadable
// directory.
func RunSuite(dir string) (*SuiteResult, error) {
	files, err := FindScenarios(dir, "")
	if err != nil {
		return nil, err
	}

	res := &SuiteResult{Total: len(files)}
	for _, path := range files {
		errs := runFile(path)
		if len(errs) == 0 {
			res.Passed++
			continue
		}
		res.Failed++
		res.Failures = append(res.Failures, SuiteFailure{ScenarioPath: path, Errors: errs})
	}
	return res, nil
}

func runFile(path string) []string {
	scenario, err := LoadScenario(path)
	if err != nil {
		return []string{fmt.Sprintf("failed to load scenario: %v", err)}
	}
	result, err := Run(scenario)
	if err != nil {
		return []string{fmt.Sprintf("scenario execution failed: %v", err)}
	}
	return result.Errors
}
