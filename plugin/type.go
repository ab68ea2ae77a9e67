package plugin

import "encoding/xml"

// TestSuites represents the root of a JUnit XML report.
type TestSuites struct {
	XMLName xml.Name    `xml:"testsuites"`
	Suites  []TestSuite `xml:"testsuite"`
}

// TestSuite represents the assertions of a single execution.
type TestSuite struct {
	ID        int        `xml:"id,attr"`
	Package   *string    `xml:"package,attr,omitempty"`
	Name      string     `xml:"name,attr"`
	Tests     int        `xml:"tests,attr"`
	Timestamp string     `xml:"timestamp,attr"`
	Time      string     `xml:"time,attr"`
	Cases     []TestCase `xml:"testcase"`

	Failures int `xml:"-"`
	Errors   int `xml:"-"`
}

// TestCase represents a single assertion or a failed script.
type TestCase struct {
	Classname string      `xml:"classname,attr"`
	Name      string      `xml:"name,attr"`
	Time      string      `xml:"time,attr,omitempty"`
	Failure   *Diagnostic `xml:"failure,omitempty"`
	Error     *Diagnostic `xml:"error,omitempty"`

	Skipped bool `xml:"-"`
}

// Diagnostic is the body of a failure or error element.
type Diagnostic struct {
	Type    string `xml:"type,attr"`
	Message string `xml:"message,attr"`
	Body    string `xml:",cdata"`
}

// Summary represents the output of the Newman json reporter.
type Summary struct {
	Collection *CollectionDefinition `json:"collection"`
	Run        *RunSummary           `json:"run"`
}

// CollectionDefinition is the collection that was run.
type CollectionDefinition struct {
	Info  CollectionInfo `json:"info"`
	Items []ItemRef      `json:"item"`
}

// CollectionInfo holds the collection's identity.
type CollectionInfo struct {
	ID   string `json:"_postman_id"`
	Name string `json:"name"`
}

// ItemRef is a request or folder as it appears in the summary. Folders carry
// their children in Items.
type ItemRef struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Items []ItemRef `json:"item"`
}

// RunSummary holds the recorded executions of a run.
type RunSummary struct {
	Executions []ExecutionRecord `json:"executions"`
}

// ExecutionRecord is one execution as serialized in the summary.
type ExecutionRecord struct {
	Cursor           Cursor         `json:"cursor"`
	Item             *ItemRef       `json:"item"`
	Response         *Response      `json:"response"`
	Assertions       []Assertion    `json:"assertions"`
	PrerequestScript []ScriptResult `json:"prerequestScript"`
	TestScript       []ScriptResult `json:"testScript"`
}

// Cursor locates an execution within the run's iterations.
type Cursor struct {
	Iteration int    `json:"iteration"`
	Length    int    `json:"length"`
	Position  int    `json:"position"`
	Ref       string `json:"ref"`
}

// Response carries the timing of the received response.
type Response struct {
	ResponseTime float64 `json:"responseTime"`
}

// Assertion is the result of one pm.test check.
type Assertion struct {
	Assertion string          `json:"assertion"`
	Skipped   bool            `json:"skipped"`
	Error     *ExecutionError `json:"error"`
}

// ScriptResult is the outcome of running a pre-request or test script.
type ScriptResult struct {
	Error *ExecutionError `json:"error"`
}

// ExecutionError describes a failed assertion or script.
type ExecutionError struct {
	Name       string `json:"name"`
	Message    string `json:"message"`
	Stack      string `json:"stack"`
	Stacktrace string `json:"stacktrace"`
}

// Execution is one observed run of a collection item, with its item resolved
// into the collection tree.
type Execution struct {
	Cursor           Cursor
	Item             Item
	Response         *Response
	Assertions       []Assertion
	PrerequestScript []ScriptResult
	TestScript       []ScriptResult
}

// Results holds the aggregate outcome of a report.
type Results struct {
	Total      int
	Failures   int
	Errors     int
	Skipped    int
	DurationMS float64
}
