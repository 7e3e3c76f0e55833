package utils

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/LavonTMCQ/M-I-S-T-E-R-sub009/log"
)

// TopWaitGroup wait all top level goroutines to finish
var TopWaitGroup = new(sync.WaitGroup)

var cleanupChan = make(chan struct{})

var cleanupOnce sync.Once

// IsCleanuping is cleanuping
func IsCleanuping() bool {
	select {
	case <-cleanupChan:
		return true
	default:
		return false
	}
}

// CleanupChan used to receive cleanup notification
func CleanupChan() <-chan struct{} {
	return cleanupChan
}

// Cleanup broadcast the cleanup notification
func Cleanup() {
	cleanupOnce.Do(func() {
		close(cleanupChan)
	})
}

// WaitAndCleanup wait the cleanup notification and then call the cleanup function
func WaitAndCleanup(doCleanup func()) {
	<-cleanupChan
	doCleanup()
}

// WaitInterrupt wait for interrupt signals and then cleanup
func WaitInterrupt() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalChan
	log.Info("receive interrupt signal", "signal", sig.String())
	Cleanup()
}
