package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// The VaultWorker for one TestExecution. Second worker in the initialization cascade.
// Receives its Initialize-command first when the BlockStorageWorker has fetched the
// TestDirective and then fetches the per-topic SecurityDirectives from the secrets vault
func startVaultWorker(
	testUuid string,
	workerCommandChannel workerProtocol.VaultWorkerCommandChannelType,
	workerEventChannel workerProtocol.WorkerEventChannelType,
	vaultClient VaultClientInterface) {

	var incomingWorkerCommand workerProtocol.VaultWorkerCommandStruct
	var fetchedSecurityDirectives []workerProtocol.SecurityDirectiveStruct
	var err error

	for {

		// Wait for incoming command over channel
		incomingWorkerCommand = <-workerCommandChannel

		switch incomingWorkerCommand.WorkerCommand {

		case workerProtocol.VaultWorkerCommandInitialize:

			fetchedSecurityDirectives, err = vaultClient.FetchSecurityDirectives(
				context.Background(), testUuid, incomingWorkerCommand.TestDirective.BrokerTopics)
			if err != nil {

				workerEventChannel <- workerProtocol.WorkerEventStruct{
					WorkerEvent:   workerProtocol.WorkerEventWorkerFailureOccurred,
					TestUuid:      testUuid,
					WorkerKind:    workerProtocol.WorkerKindVault,
					WorkerFailure: fmt.Errorf("vault worker couldn't fetch security directives: %w", err),
				}

				break
			}

			// Report the fetched SecurityDirectives, which triggers initialization of the
			// remaining three workers
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent:        workerProtocol.WorkerEventSecurityFetched,
				TestUuid:           testUuid,
				WorkerKind:         workerProtocol.WorkerKindVault,
				SecurityDirectives: fetchedSecurityDirectives,
			}

			// This worker is internally ready
			workerEventChannel <- workerProtocol.WorkerEventStruct{
				WorkerEvent: workerProtocol.WorkerEventChildGoodToGo,
				TestUuid:    testUuid,
				WorkerKind:  workerProtocol.WorkerKindVault,
			}

		case workerProtocol.VaultWorkerCommandStop:

			common_config.Logger.WithFields(logrus.Fields{
				"id":       "fb02b0ba-bbcd-4ec8-a8f4-c5c693b96cb0",
				"testUuid": testUuid,
			}).Debug("VaultWorker stops")

			return

		// No other command is supported
		default:
			common_config.Logger.WithFields(logrus.Fields{
				"id":                    "c52a9a71-f7b1-4a1c-bf0b-d24c2ff7b9d9",
				"testUuid":              testUuid,
				"incomingWorkerCommand": incomingWorkerCommand,
			}).Fatalln("Unknown command in CommandChannel for VaultWorker")
		}

	}

}
