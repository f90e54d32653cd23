package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/valfrank/SimulatorML/pkg/report"
)

// timeNow is swapped in tests to pin the suite timestamp.
var timeNow = time.Now

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one validated table.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one check of the ledger.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents a check whose values fell outside its limits.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents a check that could not be evaluated.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a fitted snapshot to JUnit XML format, one suite
// per table. Suites are sorted by table name; cases keep ledger order.
func ConvertToJUnit(snap report.Snapshot) *JUnitTestSuites {
	durationSec := float64(snap.Summary.DurationMs) / 1000.0
	timestamp := timeNow().UTC().Format(time.RFC3339)

	byTable := make(map[string][]report.Row)
	for _, row := range snap.Checks {
		byTable[row.Table] = append(byTable[row.Table], row)
	}

	names := make([]string, 0, len(byTable))
	for name := range byTable {
		names = append(names, name)
	}
	sort.Strings(names)

	suites := make([]JUnitTestSuite, 0, len(names))
	for _, name := range names {
		rows := byTable[name]
		// Per-table timing is not tracked, only the run total.
		suite := JUnitTestSuite{
			Name:      name,
			Tests:     len(rows),
			Timestamp: timestamp,
			Properties: []JUnitProperty{
				{Name: "run_id", Value: snap.Summary.RunID},
			},
		}
		for _, row := range rows {
			tc := convertRow(row)
			if tc.Failure != nil {
				suite.Failures++
			}
			if tc.Error != nil {
				suite.Errors++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		suites = append(suites, suite)
	}

	return &JUnitTestSuites{
		Tests:      snap.Summary.Total,
		Failures:   snap.Summary.Failed,
		Errors:     snap.Summary.Errors,
		Time:       durationSec,
		TestSuites: suites,
	}
}

func convertRow(row report.Row) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      row.Metric,
		Classname: row.Table,
	}

	switch row.Status {
	case report.StatusFailed:
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("values outside limits %s", row.Limits),
			Type:    "LimitFailure",
			Body:    report.FormatValues(row.Values),
		}
	case report.StatusError:
		msg := row.Error
		if msg == "" {
			msg = "evaluation error"
		}
		tc.Error = &JUnitError{
			Message: msg,
			Type:    "EvaluationError",
		}
	}

	return tc
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(snap report.Snapshot, path string) error {
	suites := ConvertToJUnit(snap)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
