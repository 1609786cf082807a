package common_config

import (
	"time"
)

// GenerateUtcTimeStampAsString
// Generate TimeStamp used in status responses, eg '2022-02-08 17:35:04.000000 -0700'
func GenerateUtcTimeStampAsString(timeStamp time.Time) (timeStampAsString string) {

	timeStampLayOut := "2006-01-02 15:04:05.000000 -0700" //milliseconds
	timeStampAsString = timeStamp.UTC().Format(timeStampLayOut)

	return timeStampAsString
}

// GenerateDatetimeTimeStampForBroadcastMessage
// Generate TimeStamp used in broadcast-messages, eg '2022-02-08 17:35:04.000000'
func GenerateDatetimeTimeStampForBroadcastMessage() (currentTimeStampAsString string) {

	currentTimeStampAsString = GenerateUtcTimeStampAsString(time.Now())

	return currentTimeStampAsString
}
