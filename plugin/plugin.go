package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ThresholdModeAbsolute   = 1
	ThresholdModePercentage = 2
)

// Args represents the plugin's configurable arguments.
type Args struct {
	SummaryPath           string `envconfig:"PLUGIN_SUMMARY_PATH"`
	Export                string `envconfig:"PLUGIN_EXPORT"`
	Separator             string `envconfig:"PLUGIN_SEPARATOR"`
	FirstPerGroup         bool   `envconfig:"PLUGIN_FIRST_EXECUTION_PER_CURSOR"`
	ScriptErrors          bool   `envconfig:"PLUGIN_REPORT_SCRIPT_ERRORS"`
	FailedFails           int    `envconfig:"PLUGIN_FAILED_FAILS"`
	FailedSkips           int    `envconfig:"PLUGIN_FAILED_SKIPS"`
	FailureOnScriptErrors bool   `envconfig:"PLUGIN_FAILURE_ON_SCRIPT_ERRORS"`
	UnstableFails         int    `envconfig:"PLUGIN_UNSTABLE_FAILS"`
	UnstableSkips         int    `envconfig:"PLUGIN_UNSTABLE_SKIPS"`
	JobStatus             string `envconfig:"PLUGIN_JOB_STATUS"`
	ThresholdMode         int    `envconfig:"PLUGIN_THRESHOLD_MODE" default:"1"`
	PluginFailIfNoResults bool   `envconfig:"PLUGIN_FAIL_IF_NO_RESULTS"`
	Level                 string `envconfig:"PLUGIN_LOG_LEVEL"`
}

// ValidateInputs ensures the user inputs meet the plugin requirements.
func ValidateInputs(args Args) error {
	if args.SummaryPath == "" {
		return errors.New("missing required parameter: SummaryPath. Please specify the Newman JSON summary to convert")
	}
	if args.FailedFails < 0 || args.FailedSkips < 0 || args.UnstableFails < 0 || args.UnstableSkips < 0 {
		return errors.New("threshold values must be non-negative. Check the configured values for failed and skipped tests")
	}
	if args.ThresholdMode != ThresholdModeAbsolute && args.ThresholdMode != ThresholdModePercentage {
		return errors.New("invalid ThresholdMode value. It must be 1 (absolute) or 2 (percentage). Check the configuration")
	}
	return nil
}

// Exec converts a Newman run summary into a JUnit report and logs details.
func Exec(ctx context.Context, args Args) error {
	summary, err := LoadSummary(args.SummaryPath)
	if err != nil {
		logger := logrus.WithField("File", args.SummaryPath).WithError(err)
		logger.Error("Error loading run summary")
		return errors.New("failed to load run summary: " + err.Error())
	}

	opts := Options{
		Start:         time.Now(),
		Separator:     args.Separator,
		Export:        args.Export,
		FirstPerGroup: args.FirstPerGroup,
		ScriptErrors:  args.ScriptErrors,
	}
	export, err := Build(summary.Executions(), opts)
	if err != nil {
		logrus.WithError(err).Error("Error building report")
		return err
	}
	if export == nil {
		if args.PluginFailIfNoResults {
			return errors.New("no executions found in the run summary. Check the summary path")
		}
		logrus.Warn("No executions found in the run summary, continuing execution as PluginFailIfNoResults is false")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := WriteExport(export); err != nil {
		return errors.New("failed to export report: " + err.Error())
	}

	results := logReportDetails(export.Report)

	logrus.Infof("\n===============================================")
	logrus.Infof("\nTotal Tests Results: %d | Failures: %d | Errors: %d | Skips: %d | Duration: %.2f ms", results.Total, results.Failures, results.Errors, results.Skipped, results.DurationMS)
	logrus.Infof("\n===============================================")

	// Validate thresholds at the aggregate level
	if err := validateThresholds(results, args); err != nil {
		logger := logrus.WithFields(logrus.Fields{
			"Total Tests": results.Total,
			"Failures":    results.Failures,
			"Errors":      results.Errors,
			"Skipped":     results.Skipped,
			"DurationMS":  results.DurationMS,
		})
		logger.Error(err.Error())
		return err
	}

	return nil
}

// logReportDetails logs every suite of the report and returns the aggregated results.
func logReportDetails(report *TestSuites) Results {
	for _, suite := range report.Suites {
		logrus.Infof("\n===============================================")
		logrus.Infof("\nSuite: %s", suite.Name)
		if suite.Package != nil {
			logrus.Infof("\nPackage: %s", *suite.Package)
		}
		logrus.Infof("\nTests: %d | Failures: %d | Errors: %d | Time: %s s", suite.Tests, suite.Failures, suite.Errors, suite.Time)
		logrus.Infof("\n---------------------------------------------------------------------------")

		for _, tc := range suite.Cases {
			status := "PASS"
			switch {
			case tc.Failure != nil:
				status = "FAIL"
			case tc.Error != nil:
				status = "ERROR"
			case tc.Skipped:
				status = "SKIP"
			}
			logrus.Infof("\n- Test: %s | Status: %s", tc.Name, status)
			if tc.Failure != nil {
				logrus.Infof("\n    %s: %s", tc.Failure.Type, tc.Failure.Message)
			}
			if tc.Error != nil {
				logrus.Infof("\n    %s: %s", tc.Error.Type, tc.Error.Message)
			}
		}
	}
	return report.Results()
}

// validateThresholds validates report thresholds based on aggregate results.
func validateThresholds(results Results, args Args) error {

	if args.FailureOnScriptErrors && results.Errors > 0 {
		return errors.New("\nbuild marked as failed due to script errors as FailureOnScriptErrors is true")
	}

	switch args.ThresholdMode {
	case ThresholdModeAbsolute:
		if err := validateAbsoluteThresholds(results, args); err != nil {
			return errors.New("\nabsolute threshold validation failed: " + err.Error())
		}

		if strings.ToUpper(args.JobStatus) == "FAILED" {
			if err := validateUnstableAbsoluteThresholds(results, args); err != nil {
				return errors.New("\nfail absolute threshold validation failed: " + err.Error())
			}
		}
	case ThresholdModePercentage:
		if err := validatePercentageThresholds(results, args); err != nil {
			return errors.New("\npercentage threshold validation failed: " + err.Error())
		}

		if strings.ToUpper(args.JobStatus) == "FAILED" {
			if err := validateUnstablePercentageThresholds(results, args); err != nil {
				return errors.New("\nfail percentage threshold validation failed: " + err.Error())
			}
		}
	default:
		return fmt.Errorf("\ninvalid ThresholdMode: %d, expected 1 (absolute) or 2 (percentage)", args.ThresholdMode)
	}
	return nil
}

// validateAbsoluteThresholds checks absolute thresholds.
func validateAbsoluteThresholds(results Results, args Args) error {
	if args.FailedFails > 0 && results.Failures > args.FailedFails {
		return fmt.Errorf("number of failed tests (%d) exceeded the failure threshold (%d)", results.Failures, args.FailedFails)
	}
	if args.FailedSkips > 0 && results.Skipped > args.FailedSkips {
		return fmt.Errorf("number of skipped tests (%d) exceeded the skip threshold (%d)", results.Skipped, args.FailedSkips)
	}
	return nil
}

// validatePercentageThresholds checks percentage-based thresholds.
func validatePercentageThresholds(results Results, args Args) error {
	if results.Total == 0 {
		return nil // No tests to validate
	}

	failureRate := float64(results.Failures) / float64(results.Total) * 100
	skipRate := float64(results.Skipped) / float64(results.Total) * 100

	if args.FailedFails > 0 && failureRate > float64(args.FailedFails) {
		return fmt.Errorf("failure rate (%.2f%%) exceeded the threshold (%.2f%%)", failureRate, float64(args.FailedFails))
	}
	if args.FailedSkips > 0 && skipRate > float64(args.FailedSkips) {
		return fmt.Errorf("skip rate (%.2f%%) exceeded the threshold (%.2f%%)", skipRate, float64(args.FailedSkips))
	}
	return nil
}

// validateUnstableAbsoluteThresholds checks absolute thresholds for marking the build as unstable.
func validateUnstableAbsoluteThresholds(results Results, args Args) error {
	if args.UnstableFails > 0 && results.Failures > args.UnstableFails {
		return fmt.Errorf("build marked as fail: number of failed tests (%d) exceeded the unstable threshold (%d)", results.Failures, args.UnstableFails)
	}

	if args.UnstableSkips > 0 && results.Skipped > args.UnstableSkips {
		return fmt.Errorf("build marked as fail: number of skipped tests (%d) exceeded the unstable threshold (%d)", results.Skipped, args.UnstableSkips)
	}

	return nil
}

// validateUnstablePercentageThresholds checks percentage-based thresholds for marking the build as unstable.
func validateUnstablePercentageThresholds(results Results, args Args) error {
	if results.Total == 0 {
		return nil // No tests to validate
	}

	failureRate := float64(results.Failures) / float64(results.Total) * 100
	skipRate := float64(results.Skipped) / float64(results.Total) * 100

	if args.UnstableFails > 0 && failureRate > float64(args.UnstableFails) {
		return fmt.Errorf("build marked as fail: failure rate (%.2f%%) exceeded the unstable threshold (%.2f%%)", failureRate, float64(args.UnstableFails))
	}

	if args.UnstableSkips > 0 && skipRate > float64(args.UnstableSkips) {
		return fmt.Errorf("build marked as fail: skip rate (%.2f%%) exceeded the unstable threshold (%.2f%%)", skipRate, float64(args.UnstableSkips))
	}

	return nil
}
