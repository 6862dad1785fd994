package queue

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/xiebiao/bookworld/pkg/logger"
)

// asynqLogger 把asynq的日志转到zerolog
type asynqLogger struct {
	log *zerolog.Logger
}

var _ asynq.Logger = (*asynqLogger)(nil)

func newAsynqLogger() *asynqLogger {
	return &asynqLogger{log: logger.Component("asynq")}
}

func (l *asynqLogger) Debug(args ...interface{}) { l.log.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...interface{})  { l.log.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...interface{})  { l.log.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...interface{}) { l.log.Error().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Fatal(args ...interface{}) { l.log.Fatal().Msg(fmt.Sprint(args...)) }
