package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds the service logger. In development it logs to stdout with a
// console encoder at debug level; in any other environment it writes JSON
// to stdout and to a rotated file under logPath. The service name is
// attached to every entry.
func New(env, service, logPath string) (*zap.Logger, error) {
	if env == "development" {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		return log.Named(service), nil
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.InfoLevel),
	}

	if logPath != "" {
		if err := os.MkdirAll(logPath, 0o755); err != nil {
			return nil, err
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   filepath.Join(logPath, service+".log"),
			MaxSize:    10, // MB
			MaxBackups: 7,
			MaxAge:     28, // days
			Compress:   true,
		})
		cores = append(cores, zapcore.NewCore(encoder, fileWriter, zap.InfoLevel))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return log.Named(service), nil
}
