package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// The BlockStorageWorker for one TestExecution. First worker in the initialization cascade.
// Fetches the TestDirective when initialized and stores the test evidence when the scenario
// suite run has finished
func startBlockStorageWorker(
	testUuid string,
	workerCommandChannel workerProtocol.BlockStorageWorkerCommandChannelType,
	workerEventChannel workerProtocol.WorkerEventChannelType,
	blockStorageClient BlockStorageClientInterface) {

	var incomingWorkerCommand workerProtocol.BlockStorageWorkerCommandStruct
	var fetchedTestDirective *workerProtocol.TestDirectiveStruct
	var err error

	for {

		// Wait for incoming command over channel
		incomingWorkerCommand = <-workerCommandChannel

		switch incomingWorkerCommand.WorkerCommand {

		case workerProtocol.BlockStorageWorkerCommandInitialize:

			fetchedTestDirective, err = blockStorageClient.FetchTestDirective(
				context.Background(), testUuid, incomingWorkerCommand.Bucket)
			if err != nil {

				workerEventChannel <- workerProtocol.WorkerEventStruct{
					WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
					TestUuid:      testUuid,
					WorkerKind:    workerProtocol.WorkerKindBlockStorage,
					WorkerFailure: fmt.Errorf("blockstorage worker couldn't fetch test directive: %w", err),
				}

				break
			}

			// Report the fetched TestDirective, which triggers the VaultWorker initialization
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent:   workerProtocol.WorkerEventBlockStorageFetched,
				TestUuid:      testUuid,
				WorkerKind:    workerProtocol.WorkerKindBlockStorage,
				TestDirective: fetchedTestDirective,
			}

			// This worker is internally ready
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
				TestUuid:    testUuid,
				WorkerKind:  workerProtocol.WorkerKindBlockStorage,
			}

		case workerProtocol.BlockStorageWorkerCommandLoadToBlockStorage:

			err = blockStorageClient.UploadTestEvidence(
				context.Background(), testUuid, fetchedTestDirective, incomingWorkerCommand.TestResult)
			if err != nil {

				workerEventChannel <- workerProtocol.WorkerEventStruct{
					WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
					TestUuid:      testUuid,
					WorkerKind:    workerProtocol.WorkerKindBlockStorage,
					WorkerFailure: fmt.Errorf("blockstorage worker couldn't upload test evidence: %w", err),
				}

				break
			}

			// The evidence is durably stored, which drives the transition to 'Completed'
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent: workerProtocol.WorkerEventUploadCompleted,
				TestUuid:    testUuid,
				WorkerKind:  workerProtocol.WorkerKindBlockStorage,
			}

		case workerProtocol.BlockStorageWorkerCommandStop:

			common_config.Logger.WithFields(logrus.Fields{
				"id":       "4b7df8b6-6a2e-41d4-bc7c-5ecb91b2e68d",
				"testUuid": testUuid,
			}).Debug("BlockStorageWorker stops")

			return

		// No other command is supported
		default:
			common_config.Logger.WithFields(logrus.Fields{
				"id":                    "1db56aa1-ff33-4d57-8e7a-5e74be5ce93c",
				"testUuid":              testUuid,
				"incomingWorkerCommand": incomingWorkerCommand,
			}).Fatalln("Unknown command in CommandChannel for BlockStorageWorker")
		}

	}

}
