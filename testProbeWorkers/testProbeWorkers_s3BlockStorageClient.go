package testProbeWorkers

import (
	"TestProbeServer/common_config"
	"TestProbeServer/workerProtocol"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// S3BlockStorageClientStruct
// Block Storage client backed by S3. Fetches the TestDirective json-file from the test
// bucket and stores the test evidence json-file beside it
type S3BlockStorageClientStruct struct {
	s3Client *s3.Client
}

func NewS3BlockStorageClient(s3Client *s3.Client) *S3BlockStorageClientStruct {
	return &S3BlockStorageClientStruct{
		s3Client: s3Client,
	}
}

// FetchTestDirective
// Fetch and decode the TestDirective json-file from the test bucket
func (s3BlockStorageClient *S3BlockStorageClientStruct) FetchTestDirective(
	ctx context.Context,
	testUuid string,
	bucket string) (testDirective *workerProtocol.TestDirectiveStruct, err error) {

	var getObjectOutput *s3.GetObjectOutput
	getObjectOutput, err = s3BlockStorageClient.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(common_config.TestDirectiveObjectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("couldn't get test directive object '%s' from bucket '%s': %w",
			common_config.TestDirectiveObjectKey, bucket, err)
	}

	defer getObjectOutput.Body.Close()

	var testDirectiveAsByteSlice []byte
	testDirectiveAsByteSlice, err = io.ReadAll(getObjectOutput.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't read test directive object body: %w", err)
	}

	testDirective = &workerProtocol.TestDirectiveStruct{}
	err = json.Unmarshal(testDirectiveAsByteSlice, testDirective)
	if err != nil {
		return nil, fmt.Errorf("couldn't unmarshal test directive json: %w", err)
	}

	// The TestDirective always refers back to the bucket it was fetched from
	testDirective.Bucket = bucket
	testDirective.DirectiveObjectKey = common_config.TestDirectiveObjectKey

	if testDirective.EvidenceObjectKey == "" {
		testDirective.EvidenceObjectKey = testUuid + "-evidence.json"
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":            "a90c55bd-70fa-467c-8ff7-92750bc9c6b2",
		"testUuid":      testUuid,
		"bucket":        bucket,
		"testDirective": testDirective,
	}).Debug("TestDirective was fetched from Block Storage")

	return testDirective, nil
}

// UploadTestEvidence
// Store the test evidence json-file in the test bucket
func (s3BlockStorageClient *S3BlockStorageClientStruct) UploadTestEvidence(
	ctx context.Context,
	testUuid string,
	testDirective *workerProtocol.TestDirectiveStruct,
	testResult *workerProtocol.TestResultStruct) (err error) {

	var testResultAsByteSlice []byte
	testResultAsByteSlice, err = json.Marshal(testResult)
	if err != nil {
		return fmt.Errorf("couldn't marshal test evidence json: %w", err)
	}

	_, err = s3BlockStorageClient.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(testDirective.Bucket),
		Key:         aws.String(testDirective.EvidenceObjectKey),
		Body:        bytes.NewReader(testResultAsByteSlice),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("couldn't put test evidence object '%s' into bucket '%s': %w",
			testDirective.EvidenceObjectKey, testDirective.Bucket, err)
	}

	common_config.Logger.WithFields(logrus.Fields{
		"id":                "05b7e8a6-cf10-4a64-8c0a-8e5ad30cf1d2",
		"testUuid":          testUuid,
		"bucket":            testDirective.Bucket,
		"evidenceObjectKey": testDirective.EvidenceObjectKey,
	}).Debug("Test evidence was stored in Block Storage")

	return nil
}
