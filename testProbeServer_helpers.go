package main

import (
	"TestProbeServer/common_config"
	"context"
	"crypto/tls"
	"os"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// InitLogger
// Initiate the Logger for the application. When running in GCP then always use standard
// output, so GCP can pick up the logs, otherwise log to file when a filename is given
func (testProbeServerObject *testProbeServerObjectStruct) InitLogger(fileName string) {

	testProbeServerObject.logger = logrus.New()

	if common_config.ExecutionLocationForTestProbeServer == common_config.GCP {

		testProbeServerObject.logger.Out = os.Stdout
		testProbeServerObject.logger.SetFormatter(&logrus.JSONFormatter{})

	} else {

		if fileName != "" {

			file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				logrus.StandardLogger().Fatalln("Couldn't open log file: " + fileName)
			}
			testProbeServerObject.logger.Out = file

		} else {
			testProbeServerObject.logger.Out = os.Stdout
		}

		testProbeServerObject.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	testProbeServerObject.logger.SetLevel(common_config.LoggingLevel)

}

// Create the PubSub-client used by the Producer- and Consumer-workers for the probe-traffic
// on the broker topics
func newPubSubClient(ctx context.Context) (pubSubClient *pubsub.Client, err error) {

	var opts []grpc.DialOption

	// PubSub is handled within GCP so add TLS

	var creds credentials.TransportCredentials
	creds = credentials.NewTLS(&tls.Config{
		InsecureSkipVerify: true,
	})

	opts = []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
	}

	pubSubClient, err = pubsub.NewClient(ctx, common_config.GCPProjectId, option.WithGRPCDialOption(opts[0]))

	return pubSubClient, err
}
