package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"

	"github.com/sirupsen/logrus"
)

// SpawnWorkersForTestExecution
// Spawn the five workers for one TestExecution. The returned command channels are owned by
// the calling TestExecutionUnit for its entire lifetime and the workers report their events
// on the provided event channel
func (workerSpawner *WorkerSpawnerStruct) SpawnWorkersForTestExecution(
	testUuid string,
	workerEventChannel workerProtocol.WorkerEventChannelType) (workerCommandChannels workerProtocol.WorkerCommandChannelsStruct) {

	workerCommandChannels = workerProtocol.WorkerCommandChannelsStruct{
		BlockStorageWorkerCommandChannel:   make(chan workerProtocol.BlockStorageWorkerCommandStruct, common_config.EngineCommandChannelSize),
		VaultWorkerCommandChannel:          make(chan workerProtocol.VaultWorkerCommandStruct, common_config.EngineCommandChannelSize),
		ScenarioRunnerWorkerCommandChannel: make(chan workerProtocol.ScenarioRunnerWorkerCommandStruct, common_config.EngineCommandChannelSize),
		ProducerWorkerCommandChannel:       make(chan workerProtocol.ProducerWorkerCommandStruct, common_config.EngineCommandChannelSize),
		ConsumerWorkerCommandChannel:       make(chan workerProtocol.ConsumerWorkerCommandStruct, common_config.EngineCommandChannelSize),
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":       "0a8c7bcb-9c5f-41fd-925e-86b9dd27c0e1",
		"testUuid": testUuid,
	}).Debug("Spawning the five workers for TestExecution")

	go startBlockStorageWorker(
		testUuid, workerCommandChannels.BlockStorageWorkerCommandChannel, workerEventChannel, workerSpawner.BlockStorageClient)

	go startVaultWorker(
		testUuid, workerCommandChannels.VaultWorkerCommandChannel, workerEventChannel, workerSpawner.VaultClient)

	go startScenarioRunnerWorker(
		testUuid, workerCommandChannels.ScenarioRunnerWorkerCommandChannel, workerEventChannel, workerSpawner.ScenarioSuiteRunner)

	go startProducerWorker(
		testUuid, workerCommandChannels.ProducerWorkerCommandChannel, workerEventChannel, workerSpawner.ProducerBrokerClient)

	go startConsumerWorker(
		testUuid, workerCommandChannels.ConsumerWorkerCommandChannel, workerEventChannel, workerSpawner.ConsumerBrokerClient)

	return workerCommandChannels
}
