package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Results  []ScenarioOutcome `json:"results"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioOutcome is one scenario of a suite.
type ScenarioOutcome struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	Result *Result `json:"result,omitempty"`
}

// ScenarioFailure is a scenario that failed or could not run.
type ScenarioFailure struct {
	Name  string `json:"name,omitempty"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

// FindScenarios returns the .yaml and .yml files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// RunSuite loads and runs every scenario file. Theory paths resolve
// relative to each scenario's directory. If filter is non-empty only
// scenarios with that name run.
func RunSuite(paths []string, filter string) *SuiteResult {
	suite := &SuiteResult{Results: []ScenarioOutcome{}}

	for _, path := range paths {
		scenario, err := LoadScenarioWithBasePath(path, filepath.Dir(path))
		if err != nil {
			suite.Total++
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{Path: path, Error: err.Error()})
			continue
		}
		if filter != "" && scenario.Name != filter {
			continue
		}

		suite.Total++
		result, err := Run(scenario)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{Name: scenario.Name, Path: path, Error: err.Error()})
			continue
		}
		suite.Results = append(suite.Results, ScenarioOutcome{Name: scenario.Name, Path: path, Result: result})
		if result.Pass {
			suite.Passed++
			continue
		}
		suite.Failed++
		for _, msg := range result.Errors {
			suite.Failures = append(suite.Failures, ScenarioFailure{Name: scenario.Name, Path: path, Error: msg})
		}
	}
	return suite
}
