package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"bytes"
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
)

// GodogScenarioSuiteRunnerStruct
// Scenario suite runner backed by godog. The features are expected to be available on the
// path named by the TestDirective, fetched together with the other test assets
type GodogScenarioSuiteRunnerStruct struct {
}

func NewGodogScenarioSuiteRunner() *GodogScenarioSuiteRunnerStruct {
	return &GodogScenarioSuiteRunnerStruct{}
}

// RunScenarioSuite
// Run the scenario suite for one TestExecution and collect the result
func (godogScenarioSuiteRunner *GodogScenarioSuiteRunnerStruct) RunScenarioSuite(
	testUuid string,
	testDirective *workerProtocol.TestDirectiveStruct,
	securityDirectives []workerProtocol.SecurityDirectiveStruct) (testResult *workerProtocol.TestResultStruct, err error) {

	if testDirective == nil || testDirective.FeaturePath == "" {
		return nil, fmt.Errorf("test directive for test '%s' doesn't name a feature path", testUuid)
	}

	var scenariosPassed int
	var scenariosFailed int
	var suiteOutputBuffer bytes.Buffer

	scenarioSuite := godog.TestSuite{
		Name: "TestProbeServer",
		ScenarioInitializer: func(scenarioContext *godog.ScenarioContext) {

			registerProbeScenarioSteps(scenarioContext, testDirective, securityDirectives)

			// Count scenario outcomes for the test evidence
			scenarioContext.After(func(ctx context.Context, scenario *godog.Scenario, scenarioErr error) (context.Context, error) {
				if scenarioErr != nil {
					scenariosFailed = scenariosFailed + 1
				} else {
					scenariosPassed = scenariosPassed + 1
				}
				return ctx, nil
			})
		},
		Options: &godog.Options{
			Format: "progress",
			Paths:  []string{testDirective.FeaturePath},
			Output: &suiteOutputBuffer,
		},
	}

	var suiteExitStatus int
	suiteExitStatus = scenarioSuite.Run()

	testResult = &workerProtocol.TestResultStruct{
		TestUuid:        testUuid,
		SuiteSucceeded:  suiteExitStatus == 0,
		ScenariosPassed: scenariosPassed,
		ScenariosFailed: scenariosFailed,
		ResultSummary:   suiteOutputBuffer.String(),
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":              "4e2a10bd-0e86-4df5-a4fb-20ff5c3b9f74",
		"testUuid":        testUuid,
		"suiteExitStatus": suiteExitStatus,
		"scenariosPassed": scenariosPassed,
		"scenariosFailed": scenariosFailed,
	}).Info("Scenario suite run finished")

	return testResult, nil
}

// Register the probe's step library. The features fetched from Block Storage are written
// against these steps
func registerProbeScenarioSteps(
	scenarioContext *godog.ScenarioContext,
	testDirective *workerProtocol.TestDirectiveStruct,
	securityDirectives []workerProtocol.SecurityDirectiveStruct) {

	scenarioContext.Step(`^the broker topic "([^"]*)" is named by the test directive$`,
		func(brokerTopic string) error {
			for _, directiveBrokerTopic := range testDirective.BrokerTopics {
				if directiveBrokerTopic == brokerTopic {
					return nil
				}
			}
			return fmt.Errorf("broker topic '%s' is not named by the test directive", brokerTopic)
		})

	scenarioContext.Step(`^a security directive exists for the broker topic "([^"]*)"$`,
		func(brokerTopic string) error {
			if findSecurityDirectiveForBrokerTopic(brokerTopic, securityDirectives) == nil {
				return fmt.Errorf("no security directive exists for broker topic '%s'", brokerTopic)
			}
			return nil
		})

	scenarioContext.Step(`^the security protocol for the broker topic "([^"]*)" is "([^"]*)"$`,
		func(brokerTopic string, securityProtocol string) error {
			securityDirective := findSecurityDirectiveForBrokerTopic(brokerTopic, securityDirectives)
			if securityDirective == nil {
				return fmt.Errorf("no security directive exists for broker topic '%s'", brokerTopic)
			}
			if securityDirective.SecurityProtocol != securityProtocol {
				return fmt.Errorf("security protocol for broker topic '%s' is '%s', not '%s'",
					brokerTopic, securityDirective.SecurityProtocol, securityProtocol)
			}
			return nil
		})
}
