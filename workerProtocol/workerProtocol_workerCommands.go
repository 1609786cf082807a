package workerProtocol

// The five worker kinds that a TestExecutionUnit spawns and owns
type WorkerKindType uint8

const (
	WorkerKindBlockStorage WorkerKindType = iota
	WorkerKindVault
	WorkerKindScenarioRunner
	WorkerKindProducer
	WorkerKindConsumer
)

// NumberOfWorkersPerTestExecution
// All five workers must acknowledge 'ChildGoodToGo' before Loading can become Loaded
const NumberOfWorkersPerTestExecution = 5

// String
// Convert the WorkerKind into the worker name used in logs and failure messages
func (workerKind WorkerKindType) String() string {

	switch workerKind {
	case WorkerKindBlockStorage:
		return "BlockStorageWorker"
	case WorkerKindVault:
		return "VaultWorker"
	case WorkerKindScenarioRunner:
		return "ScenarioRunnerWorker"
	case WorkerKindProducer:
		return "ProducerWorker"
	case WorkerKindConsumer:
		return "ConsumerWorker"
	default:
		return "UnknownWorker"
	}
}

// ***********************************************************************************************************
// Commands sent from a TestExecutionUnit to its BlockStorageWorker

type BlockStorageWorkerCommandType uint8

const (
	BlockStorageWorkerCommandInitialize BlockStorageWorkerCommandType = iota
	BlockStorageWorkerCommandLoadToBlockStorage
	BlockStorageWorkerCommandStop
)

type BlockStorageWorkerCommandStruct struct {
	WorkerCommand BlockStorageWorkerCommandType
	TestUuid      string

	// Only used for 'BlockStorageWorkerCommandInitialize'
	Bucket string

	// Only used for 'BlockStorageWorkerCommandLoadToBlockStorage'
	TestResult *TestResultStruct
}

type BlockStorageWorkerCommandChannelType chan BlockStorageWorkerCommandStruct

// ***********************************************************************************************************
// Commands sent from a TestExecutionUnit to its VaultWorker

type VaultWorkerCommandType uint8

const (
	VaultWorkerCommandInitialize VaultWorkerCommandType = iota
	VaultWorkerCommandStop
)

type VaultWorkerCommandStruct struct {
	WorkerCommand VaultWorkerCommandType
	TestUuid      string

	// Only used for 'VaultWorkerCommandInitialize'
	TestDirective *TestDirectiveStruct
}

type VaultWorkerCommandChannelType chan VaultWorkerCommandStruct

// ***********************************************************************************************************
// Commands sent from a TestExecutionUnit to its ScenarioRunnerWorker

type ScenarioRunnerWorkerCommandType uint8

const (
	ScenarioRunnerWorkerCommandInitialize ScenarioRunnerWorkerCommandType = iota
	ScenarioRunnerWorkerCommandStartTest
	ScenarioRunnerWorkerCommandStop
)

type ScenarioRunnerWorkerCommandStruct struct {
	WorkerCommand ScenarioRunnerWorkerCommandType
	TestUuid      string

	// Only used for 'ScenarioRunnerWorkerCommandInitialize'
	TestDirective      *TestDirectiveStruct
	SecurityDirectives []SecurityDirectiveStruct
}

type ScenarioRunnerWorkerCommandChannelType chan ScenarioRunnerWorkerCommandStruct

// ***********************************************************************************************************
// Commands sent from a TestExecutionUnit to its ProducerWorker

type ProducerWorkerCommandType uint8

const (
	ProducerWorkerCommandInitialize ProducerWorkerCommandType = iota
	ProducerWorkerCommandStop
)

type ProducerWorkerCommandStruct struct {
	WorkerCommand ProducerWorkerCommandType
	TestUuid      string

	// Only used for 'ProducerWorkerCommandInitialize'
	TestDirective      *TestDirectiveStruct
	SecurityDirectives []SecurityDirectiveStruct
}

type ProducerWorkerCommandChannelType chan ProducerWorkerCommandStruct

// ***********************************************************************************************************
// Commands sent from a TestExecutionUnit to its ConsumerWorker

type ConsumerWorkerCommandType uint8

const (
	ConsumerWorkerCommandInitialize ConsumerWorkerCommandType = iota
	ConsumerWorkerCommandStop
)

type ConsumerWorkerCommandStruct struct {
	WorkerCommand ConsumerWorkerCommandType
	TestUuid      string

	// Only used for 'ConsumerWorkerCommandInitialize'
	TestDirective      *TestDirectiveStruct
	SecurityDirectives []SecurityDirectiveStruct
}

type ConsumerWorkerCommandChannelType chan ConsumerWorkerCommandStruct

// ***********************************************************************************************************
// The full set of command channels for the five workers owned by one TestExecutionUnit

type WorkerCommandChannelsStruct struct {
	BlockStorageWorkerCommandChannel   BlockStorageWorkerCommandChannelType
	VaultWorkerCommandChannel          VaultWorkerCommandChannelType
	ScenarioRunnerWorkerCommandChannel ScenarioRunnerWorkerCommandChannelType
	ProducerWorkerCommandChannel       ProducerWorkerCommandChannelType
	ConsumerWorkerCommandChannel       ConsumerWorkerCommandChannelType
}

// WorkerSpawnerInterface
// Spawns the five workers for one TestExecution. The TestExecutionUnit owns the returned
// command channels for its entire lifetime and the workers reply on the provided event channel
type WorkerSpawnerInterface interface {
	SpawnWorkersForTestExecution(
		testUuid string,
		workerEventChannel WorkerEventChannelType) (workerCommandChannels WorkerCommandChannelsStruct)
}
