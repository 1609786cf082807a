package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"fmt"

	"github.com/sirupsen/logrus"
)

// The ScenarioRunnerWorker for one TestExecution. Initialized in the cascade fan-out and
// then waits for the StartTest-command from the TestExecutionUnit before the scenario suite
// run begins. An in-flight suite run is expected to take unbounded time, so the run happens
// in a sub-goroutine and the worker stays responsive to the Stop-command
func startScenarioRunnerWorker(
	testUuid string,
	workerCommandChannel workerProtocol.ScenarioRunnerWorkerCommandChannelType,
	workerEventChannel workerProtocol.WorkerEventChannelType,
	scenarioSuiteRunner ScenarioSuiteRunnerInterface) {

	var incomingWorkerCommand workerProtocol.ScenarioRunnerWorkerCommandStruct
	var testDirective *workerProtocol.TestDirectiveStruct
	var securityDirectives []workerProtocol.SecurityDirectiveStruct

	for {

		// Wait for incoming command over channel
		incomingWorkerCommand = <-workerCommandChannel

		switch incomingWorkerCommand.WorkerCommand {

		case workerProtocol.ScenarioRunnerWorkerCommandInitialize:

			// Remember the combined directive data for the coming suite run
			testDirective = incomingWorkerCommand.TestDirective
			securityDirectives = incomingWorkerCommand.SecurityDirectives

			// This worker is internally ready
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
				TestUuid:    testUuid,
				WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
			}

		case workerProtocol.ScenarioRunnerWorkerCommandStartTest:

			// Run the scenario suite off the worker's own command loop
			go func(testDirective *workerProtocol.TestDirectiveStruct,
				securityDirectives []workerProtocol.SecurityDirectiveStruct) {

				var testResult *workerProtocol.TestResultStruct
				var err error

				testResult, err = scenarioSuiteRunner.RunScenarioSuite(testUuid, testDirective, securityDirectives)
				if err != nil {

					workerEventChannel <- workerProtocol.WorkerEventStruct{
						WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
						TestUuid:      testUuid,
						WorkerKind:    workerProtocol.WorkerKindScenarioRunner,
						WorkerFailure: fmt.Errorf("scenario runner worker couldn't run scenario suite: %w", err),
					}

					return
				}

				workerEventChannel <- workerProtocol.WorkerEventStruct{
					WorkerEvent: workerProtocol.WorkerEventTestCompleted,
					TestUuid:    testUuid,
					WorkerKind:  workerProtocol.WorkerKindScenarioRunner,
					TestResult:  testResult,
				}

			}(testDirective, securityDirectives)

		case workerProtocol.ScenarioRunnerWorkerCommandStop:

			common_config.Logger.WithFields(logrus.Fields{
				"id":       "e67cc1e7-0caa-4a3f-ae53-06f2b7a8e964",
				"testUuid": testUuid,
			}).Debug("ScenarioRunnerWorker stops")

			return

		// No other command is supported
		default:
			common_config.Logger.WithFields(logrus.Fields{
				"id":                    "8be7ddd0-59a9-4425-99e2-f6e51bd31be9",
				"testUuid":              testUuid,
				"incomingWorkerCommand": incomingWorkerCommand,
			}).Fatalln("Unknown command in CommandChannel for ScenarioRunnerWorker")
		}

	}

}
