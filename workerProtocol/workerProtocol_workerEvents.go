package workerProtocol

// ***********************************************************************************************************
// Events sent from a worker back to its owning TestExecutionUnit

type WorkerEventType uint8

const (
	// The BlockStorageWorker has fetched the TestDirective
	WorkerEventBlockStorageFetched WorkerEventType = iota

	// The VaultWorker has fetched the per-topic SecurityDirectives
	WorkerEventSecurityFetched

	// A worker is internally ready. Sent exactly once per worker
	WorkerEventChildGoodToGo

	// The ScenarioRunnerWorker has finished the scenario suite run
	WorkerEventTestCompleted

	// The BlockStorageWorker has stored the test evidence
	WorkerEventUploadCompleted

	// A worker failed. All worker failure kinds are normalized into this single event
	WorkerEventWorkerFailureOccurred
)

type WorkerEventStruct struct {
	WorkerEvent WorkerEventType
	TestUuid    string
	WorkerKind  WorkerKindType

	// Only used for 'WorkerEventBlockStorageFetched'
	TestDirective *TestDirectiveStruct

	// Only used for 'WorkerEventSecurityFetched'
	SecurityDirectives []SecurityDirectiveStruct

	// Only used for 'WorkerEventTestCompleted'
	TestResult *TestResultStruct

	// Only used for 'WorkerEventWorkerFailureOccurred'
	WorkerFailure error
}

// Channel owned by a TestExecutionUnit on which its five workers report their events
type WorkerEventChannelType chan WorkerEventStruct
