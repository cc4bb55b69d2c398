package optimizer

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/archlens/sysmodel/pkg/diffcodec"
	"github.com/archlens/sysmodel/pkg/graph"
	"github.com/archlens/sysmodel/pkg/ontology"
)

// TestCase defines one evaluation fixture: a graph (given as diffcodec
// text, the engine's own human-editable format) plus the score
// thresholds a search run over it must clear.
type TestCase struct {
	Name string `json:"name"`

	// GraphText is a diffcodec document describing the starting graph.
	GraphText string `json:"graph_text"`

	// Params overrides the search budget for this case; zero value
	// means DefaultSearchParams.
	Params SearchParams `json:"-"`

	// Thresholds are the minimum acceptable final score components.
	Thresholds ScoreComponents `json:"thresholds"`
}

// TestSuite is a collection of test cases loadable from JSON.
type TestSuite struct {
	Name      string     `json:"name"`
	Version   string     `json:"version"`
	TestCases []TestCase `json:"test_cases"`
}

// TestResult is one test case's outcome.
type TestResult struct {
	TestCase TestCase        `json:"test_case"`
	Report   SearchReport    `json:"-"`
	Best     ScoreComponents `json:"best"`
	Passed   bool            `json:"passed"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// EvalResult is a harness run's full account.
type EvalResult struct {
	SuiteName   string        `json:"suite_name"`
	Timestamp   time.Time     `json:"timestamp"`
	Duration    time.Duration `json:"duration"`
	Results     []TestResult  `json:"results"`
	TotalTests  int           `json:"total_tests"`
	PassedTests int           `json:"passed_tests"`
	FailedTests int           `json:"failed_tests"`
}

// Harness runs a set of optimizer test cases and reports pass/fail
// against each case's thresholds, mirroring the search-quality
// harness's fixture/run/aggregate shape, repurposed here for
// architecture scores instead of IR ranking metrics.
type Harness struct {
	mu        sync.RWMutex
	testCases []TestCase
	registry  *ontology.Registry
}

// NewHarness creates an empty harness; reg resolves the diffcodec
// fixtures' semantic IDs and defaults to ontology.LoadDefault.
func NewHarness(reg *ontology.Registry) *Harness {
	if reg == nil {
		reg = ontology.LoadDefault()
	}
	return &Harness{registry: reg}
}

// AddTestCase adds a single test case.
func (h *Harness) AddTestCase(tc TestCase) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.testCases = append(h.testCases, tc)
}

// LoadSuite loads test cases from a JSON file on disk.
func (h *Harness) LoadSuite(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("optimizer: reading suite file: %w", err)
	}
	var suite TestSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return fmt.Errorf("optimizer: parsing suite JSON: %w", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.testCases = append(h.testCases, suite.TestCases...)
	return nil
}

// Run executes every test case and returns the aggregate result.
func (h *Harness) Run() (*EvalResult, error) {
	h.mu.RLock()
	cases := make([]TestCase, len(h.testCases))
	copy(cases, h.testCases)
	h.mu.RUnlock()

	if len(cases) == 0 {
		return nil, fmt.Errorf("optimizer: no test cases defined")
	}

	start := time.Now()
	results := make([]TestResult, 0, len(cases))
	passed, failed := 0, 0

	for _, tc := range cases {
		result := h.runTestCase(tc)
		if result.Error != "" || !result.Passed {
			failed++
		} else {
			passed++
		}
		results = append(results, result)
	}

	return &EvalResult{
		SuiteName:   "default",
		Timestamp:   start,
		Duration:    time.Since(start),
		Results:     results,
		TotalTests:  len(results),
		PassedTests: passed,
		FailedTests: failed,
	}, nil
}

func (h *Harness) runTestCase(tc TestCase) TestResult {
	startedAt := time.Now()

	store := graph.New(h.registry, "eval", "eval-"+tc.Name)
	doc := diffcodec.Parse(tc.GraphText)
	if _, err := diffcodec.Apply(store, doc); err != nil {
		return TestResult{TestCase: tc, Error: err.Error(), Duration: time.Since(startedAt)}
	}

	params := tc.Params
	if params.MaxIterations == 0 {
		params = DefaultSearchParams()
	}

	report := Search(store, params)
	best := bestComponents(report.Front)

	return TestResult{
		TestCase: tc,
		Report:   report,
		Best:     best,
		Passed:   meetsThresholds(best, tc.Thresholds),
		Duration: time.Since(startedAt),
	}
}

// bestComponents returns the highest-scalar variant's components on
// front, or the zero value if front is empty.
func bestComponents(front *Front) ScoreComponents {
	var best ScoreComponents
	bestScalar := -1.0
	for _, v := range front.Variants() {
		if v.Scalar > bestScalar {
			bestScalar = v.Scalar
			best = v.Components
		}
	}
	return best
}

// meetsThresholds reports whether every non-zero threshold component
// is cleared by got. A zero threshold means "no requirement" for that
// component.
func meetsThresholds(got, want ScoreComponents) bool {
	gv, wv := got.Vector(), want.Vector()
	for i := range gv {
		if wv[i] > 0 && gv[i] < wv[i] {
			return false
		}
	}
	return true
}
