package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	base    *zap.Logger
	sugar   *zap.SugaredLogger
	logFile *os.File
)

// InitLogger logs to the console and, when filename is set, appends JSON lines
// to that file. level is a zap level name such as "debug" or "info".
func InitLogger(filename string, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := encCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), lvl),
	}

	var f *os.File
	if filename != "" {
		f, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	base = l
	sugar = l.Sugar()
	return nil
}

// Init sets up a development console logger if none exists yet.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		return
	}
	l, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	base = l
	sugar = l.Sugar()
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// L returns the structured logger for components that take a *zap.Logger.
func L() *zap.Logger {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	return base.WithOptions(zap.AddCallerSkip(-1))
}

func s() *zap.SugaredLogger {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Info(format string, v ...interface{})  { s().Infof(format, v...) }
func Infof(format string, v ...interface{}) { s().Infof(format, v...) }

func Warn(format string, v ...interface{})  { s().Warnf(format, v...) }
func Warnf(format string, v ...interface{}) { s().Warnf(format, v...) }

func Error(format string, v ...interface{})  { s().Errorf(format, v...) }
func Errorf(format string, v ...interface{}) { s().Errorf(format, v...) }

func Debugf(format string, v ...interface{}) { s().Debugf(format, v...) }
