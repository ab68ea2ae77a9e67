package plugin

import (
	"encoding/xml"
	"errors"
	"math"
	"math/big"
	"strconv"
	"time"
)

const (
	// ExportName identifies the report among a run's exports.
	ExportName = "junit-reporter-full"
	// DefaultExportFile is the report file name used when no path is configured.
	DefaultExportFile = "newman-run-report-full.xml"

	timestampLayout = "2006-01-02T15:04:05.000"

	// maxAdvanceMS is the largest advance that fits in a time.Duration.
	maxAdvanceMS = math.MaxInt64 / int64(time.Millisecond)

	prerequestScriptCase = "Pre-request Script"
	testScriptCase       = "Tests"
)

// Options controls how a report is built.
type Options struct {
	// Start is the timestamp of the first suite. Defaults to now.
	Start time.Time
	// Location renders timestamps. Defaults to the local time zone.
	Location *time.Location
	// Separator joins qualified names. Defaults to DefaultSeparator.
	Separator string
	// Export is the destination path handed to the exporter.
	Export string
	// FirstPerGroup emits only the first execution of each cursor ref.
	FirstPerGroup bool
	// ScriptErrors emits a case with an error element for every failed
	// pre-request or test script.
	ScriptErrors bool
}

// Export describes a generated report for the exporter.
type Export struct {
	Name    string
	Default string
	Path    string
	Content string

	// Report is the structure Content was rendered from.
	Report *TestSuites
}

// Build renders executions as a JUnit report. It returns nil when there are
// no executions to report.
func Build(executions []Execution, opts Options) (*Export, error) {
	if len(executions) == 0 {
		return nil, nil
	}
	return NewReport(executions, opts).Export(opts.Export)
}

// NewReport groups executions by cursor ref and builds one suite per
// execution.
func NewReport(executions []Execution, opts Options) *TestSuites {
	separator := opts.Separator
	if separator == "" {
		separator = DefaultSeparator
	}
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	location := opts.Location
	if location == nil {
		location = time.Local
	}

	report := &TestSuites{}
	timestamp := start.In(location).Truncate(time.Millisecond)
	for _, group := range groupByRef(executions) {
		for _, execution := range group {
			var suite TestSuite
			suite, timestamp = buildSuite(execution, timestamp, separator, opts.ScriptErrors)
			report.Suites = append(report.Suites, suite)
			if opts.FirstPerGroup {
				break
			}
		}
	}
	return report
}

// Export serializes the report into an export descriptor.
func (r *TestSuites) Export(path string) (*Export, error) {
	content, err := r.Marshal()
	if err != nil {
		return nil, err
	}
	return &Export{
		Name:    ExportName,
		Default: DefaultExportFile,
		Path:    path,
		Content: content,
		Report:  r,
	}, nil
}

// Marshal renders the report as an indented XML document.
func (r *TestSuites) Marshal() (string, error) {
	out, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", errors.New("failed to encode JUnit XML: " + err.Error())
	}
	return xml.Header + string(out), nil
}

// Results aggregates the outcome of every case in the report.
func (r *TestSuites) Results() Results {
	var results Results
	for _, suite := range r.Suites {
		results.Total += len(suite.Cases)
		results.Failures += suite.Failures
		results.Errors += suite.Errors
		for _, tc := range suite.Cases {
			if tc.Skipped {
				results.Skipped++
			}
		}
		seconds, _ := strconv.ParseFloat(suite.Time, 64)
		results.DurationMS += math.Round(seconds * 1000)
	}
	return results
}

// groupByRef partitions executions by cursor ref. Groups are ordered by first
// appearance and keep the order of their executions.
func groupByRef(executions []Execution) [][]Execution {
	var groups [][]Execution
	position := make(map[string]int)
	for _, execution := range executions {
		i, ok := position[execution.Cursor.Ref]
		if !ok {
			i = len(groups)
			position[execution.Cursor.Ref] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], execution)
	}
	return groups
}

// buildSuite renders one execution and returns the timestamp of the suite
// that follows it.
func buildSuite(execution Execution, timestamp time.Time, separator string, scriptErrors bool) (TestSuite, time.Time) {
	elapsed := execution.responseTime()
	suite := TestSuite{
		ID:        execution.Cursor.Iteration*execution.Cursor.Length + execution.Cursor.Position,
		Tests:     len(execution.Assertions),
		Timestamp: timestamp.Format(timestampLayout),
		Time:      formatFixed(elapsed / 1000),
	}
	if execution.Item != nil {
		suite.Name = execution.Item.Name()
	}
	if pkg, ok := ParentName(execution.Item, separator); ok {
		suite.Package = &pkg
	}

	// case time divides the rendered suite time, not the raw elapsed time
	suiteTime, _ := strconv.ParseFloat(suite.Time, 64)
	for _, assertion := range execution.Assertions {
		tc := suite.newCase(separator, assertion.Assertion)
		tc.Time = formatFixed(suiteTime / float64(len(execution.Assertions)))
		tc.Skipped = assertion.Skipped
		if assertion.Error != nil {
			suite.Failures++
			tc.Failure = &Diagnostic{
				Type:    assertion.Error.Name,
				Message: assertion.Error.Message,
				Body:    assertion.Error.Stack,
			}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	if scriptErrors {
		suite.addScriptErrors(separator, prerequestScriptCase, execution.PrerequestScript)
		suite.addScriptErrors(separator, testScriptCase, execution.TestScript)
		suite.Tests = len(suite.Cases)
	}

	return suite, advance(timestamp, elapsed)
}

// advance moves timestamp forward by whole milliseconds of elapsed. Negative
// and oversized values are clamped so timestamps never decrease.
func advance(timestamp time.Time, elapsed float64) time.Time {
	ms := int64(math.Max(0, math.Min(elapsed, float64(maxAdvanceMS))))
	return timestamp.Add(time.Duration(ms) * time.Millisecond)
}

// newCase starts a case whose classname is derived from the suite's package
// and name attributes.
func (s *TestSuite) newCase(separator, name string) TestCase {
	var pkg string
	if s.Package != nil {
		pkg = *s.Package
	}
	return TestCase{
		Classname: pkg + separator + s.Name,
		Name:      name,
	}
}

func (s *TestSuite) addScriptErrors(separator, name string, results []ScriptResult) {
	for _, result := range results {
		if result.Error == nil {
			continue
		}
		s.Errors++
		tc := s.newCase(separator, name)
		tc.Error = &Diagnostic{
			Type:    result.Error.Name,
			Message: result.Error.Message,
			Body:    result.Error.Stacktrace,
		}
		s.Cases = append(s.Cases, tc)
	}
}

func (e Execution) responseTime() float64 {
	if e.Response == nil {
		return 0
	}
	if math.IsNaN(e.Response.ResponseTime) || math.IsInf(e.Response.ResponseTime, 0) {
		return 0
	}
	return e.Response.ResponseTime
}

// formatFixed renders v with three decimals. Exact ties round away from zero.
func formatFixed(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	scaled := new(big.Float).SetPrec(128).SetFloat64(v)
	scaled.Mul(scaled, big.NewFloat(10000))
	if scaled.IsInt() {
		digits, _ := scaled.Int(nil)
		if new(big.Int).Rem(digits.Abs(digits), big.NewInt(10)).Int64() == 5 {
			v = math.Nextafter(v, math.Copysign(math.Inf(1), v))
		}
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
