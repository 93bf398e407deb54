package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CreateGracefulShutdownChannel returns a channel that receives SIGINT and
// SIGTERM.
func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	return gracefulShutdown
}

// ListenForShutdown blocks until a signal arrives, runs the handler and
// waits for done or the timeout, whichever comes first.
func ListenForShutdown(
	gracefulShutdown chan os.Signal,
	done chan bool,
	handler func(),
	timeout time.Duration,
	l *zap.Logger,
) {
	<-gracefulShutdown
	go func() {
		handler()
		done <- true
	}()

	select {
	case <-done:
		l.Sugar().Info("Shutdown complete")
	case <-time.After(timeout):
		l.Sugar().Warn("Shutdown timed out, exiting")
	}
}
