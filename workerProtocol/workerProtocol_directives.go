package workerProtocol

// The fetched description of where the test assets live and which topics and roles they
// target. Fetched from Block Storage by the BlockStorageWorker and then handed, inside
// Initialize-commands, to the other workers
type TestDirectiveStruct struct {
	Bucket             string   `json:"bucket"`
	DirectiveObjectKey string   `json:"directiveObjectKey"`
	EvidenceObjectKey  string   `json:"evidenceObjectKey"`
	FeaturePath        string   `json:"featurePath"`
	BrokerTopics       []string `json:"brokerTopics"`
}

// Per-topic credential and protocol configuration, fetched from the Vault by the VaultWorker
type SecurityDirectiveStruct struct {
	BrokerTopic      string `json:"brokerTopic"`
	SecurityProtocol string `json:"securityProtocol"`
	UserName         string `json:"userName"`
	Credential       string `json:"credential"`
}

// The result of one scenario suite run. Produced by the ScenarioRunnerWorker and fixed when
// the evidence upload has been acknowledged by the BlockStorageWorker
type TestResultStruct struct {
	TestUuid         string `json:"testId"`
	SuiteSucceeded   bool   `json:"suiteSucceeded"`
	ScenariosPassed  int    `json:"scenariosPassed"`
	ScenariosFailed  int    `json:"scenariosFailed"`
	ResultSummary    string `json:"resultSummary"`
	ProducedMessages int    `json:"producedMessages"`
	ConsumedMessages int    `json:"consumedMessages"`
}
