package common_config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// CancellableTimerStruct
// One armed timeout-timer for one TestExecutionUnit-state. A new timer is created every time
// a state arms a timeout and the previous one is always cancelled first, so at most one
// timer is ever pending per TestExecutionUnit
type CancellableTimerStruct struct {
	cancel chan bool

	startTimeStamp   time.Time
	timeOutTimeStamp time.Time
	timerDuration    time.Duration
	timerGeneration  uint64
	testUuid         string
}

func NewCancellableTimer(testUuid string, timerGeneration uint64) *CancellableTimerStruct {
	return &CancellableTimerStruct{
		cancel:          make(chan bool),
		testUuid:        testUuid,
		timerGeneration: timerGeneration,
	}
}

// internal wait goroutine wrapping time.After
func (c *CancellableTimerStruct) wait(d time.Duration, ch chan bool) {
	select {
	case <-time.After(d):
		ch <- true
	case <-c.cancel:
		ch <- false
	}
}

// TimerGeneration
// The timer generation that the timer was armed with. A delivered timeout carrying an old
// generation is ignored by the TestExecutionUnit
func (c *CancellableTimerStruct) TimerGeneration() uint64 {
	return c.timerGeneration
}

// WhenWillTimerTimeOut
// Returns both how long before the timer times out and the TimeOutTimeStamp
func (c *CancellableTimerStruct) WhenWillTimerTimeOut() (durationToTimeOut time.Duration, timeOutTimeStamp time.Time) {

	// Calculate time-duration before TimeOut
	durationToTimeOut = c.timeOutTimeStamp.Sub(time.Now())

	// TimeOut-time
	timeOutTimeStamp = c.timeOutTimeStamp

	return durationToTimeOut, timeOutTimeStamp
}

// After mimics time.After but returns bool to signify whether we timed out or cancelled
func (c *CancellableTimerStruct) After(d time.Duration) chan bool {

	// Save time-variables for Timer
	c.startTimeStamp = time.Now()
	c.timerDuration = d
	c.timeOutTimeStamp = c.startTimeStamp.Add(c.timerDuration)

	ch := make(chan bool)
	go c.wait(d, ch)
	return ch
}

// Cancel makes all the waiters receive false
func (c *CancellableTimerStruct) Cancel() {
	defer func() {
		recoverValue := recover()
		if recoverValue != nil {
			Logger.WithFields(logrus.Fields{
				"id":               "2bc0e8a0-9c31-4a3b-ac59-b65fde999f9f",
				"testUuid":         c.testUuid,
				"startTimeStamp":   c.startTimeStamp,
				"timeOutTimeStamp": c.timeOutTimeStamp,
				"timerGeneration":  c.timerGeneration,
				"recoverValue":     recoverValue,
			}).Error("Panic when closing channel!!!")
		}
	}()

	Logger.WithFields(logrus.Fields{
		"id":               "ca35c4bf-dbcb-41b4-842a-73541f54c9f0",
		"testUuid":         c.testUuid,
		"startTimeStamp":   c.startTimeStamp,
		"timeOutTimeStamp": c.timeOutTimeStamp,
		"timerGeneration":  c.timerGeneration,
	}).Debug("close(c.cancel)")

	close(c.cancel)

}
