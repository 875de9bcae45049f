package sfu

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/pion/logging"
)

// pionLogger bridges pion's LeveledLogger interface to this module's logr
// scopes, so pion/sctp's internal association/stream logging shows up
// alongside everything else under the same DEBUG glob filtering.
type pionLogger struct {
	logger logr.Logger
}

func newPionLogger(scope string) *pionLogger {
	return &pionLogger{logger: NewLogger(scope)}
}

func (l *pionLogger) Trace(msg string)                          { l.logger.V(2).Info(msg) }
func (l *pionLogger) Tracef(format string, args ...interface{})  { l.logger.V(2).Info(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Debug(msg string)                          { l.logger.V(1).Info(msg) }
func (l *pionLogger) Debugf(format string, args ...interface{})  { l.logger.V(1).Info(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Info(msg string)                           { l.logger.Info(msg) }
func (l *pionLogger) Infof(format string, args ...interface{})   { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Warn(msg string)                            { l.logger.Info(msg) }
func (l *pionLogger) Warnf(format string, args ...interface{})   { l.logger.Info(fmt.Sprintf(format, args...)) }
func (l *pionLogger) Error(msg string)                           { l.logger.Error(nil, msg) }
func (l *pionLogger) Errorf(format string, args ...interface{})  { l.logger.Error(nil, fmt.Sprintf(format, args...)) }

// pionLoggerFactory implements pion/logging.LoggerFactory, handing out one
// pionLogger per pion component (each gets its own DEBUG glob scope, named
// "pion.<scope>").
type pionLoggerFactory struct{}

func NewPionLoggerFactory() logging.LoggerFactory {
	return pionLoggerFactory{}
}

func (pionLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return newPionLogger("pion." + scope)
}
