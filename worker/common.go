package worker

import (
	"time"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/cmd/utils"
	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
)

func logWorker(job, subject string, context ...interface{}) {
	log.Info("["+job+"] "+subject, context...)
}

func logWorkerTrace(job, subject string, context ...interface{}) {
	log.Trace("["+job+"] "+subject, context...)
}

func logWorkerError(job, subject string, err error, context ...interface{}) {
	fields := []interface{}{"err", err}
	fields = append(fields, context...)
	log.Error("["+job+"] "+subject, fields...)
}

// restInJob sleep interval but break once cleanup starts.
func restInJob(interval time.Duration) {
	exitCh := utils.CleanupChan()
	select {
	case <-exitCh:
	case <-time.After(interval):
	}
}

func now() int64 {
	return time.Now().Unix()
}
