package fs

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	for _, test := range []struct {
		in   LogLevel
		want string
	}{
		{LogLevelEmergency, "EMERGENCY"},
		{LogLevelNotice, "NOTICE"},
		{LogLevelDebug, "DEBUG"},
		{99, "LogLevel(99)"},
	} {
		logLevel := test.in
		got := logLevel.String()
		assert.Equal(t, test.want, got, test.in)
	}
}

func TestLogLevelSet(t *testing.T) {
	for _, test := range []struct {
		in   string
		want LogLevel
		err  bool
	}{
		{"EMERGENCY", LogLevelEmergency, false},
		{"INFO", LogLevelInfo, false},
		{"DEBUG", LogLevelDebug, false},
		{"Potato", 100, true},
		{"", 100, true},
	} {
		logLevel := LogLevel(100)
		err := logLevel.Set(test.in)
		if test.err {
			require.Error(t, err, test.in)
		} else {
			require.NoError(t, err, test.in)
		}
		assert.Equal(t, test.want, logLevel, test.in)
	}
}

// captureLog redirects the standard logger for the duration of fn
func captureLog(t *testing.T, fn func()) string {
	var buf bytes.Buffer
	oldFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(oldFlags)
	}()
	fn()
	return buf.String()
}

func TestLogLevelFiltering(t *testing.T) {
	ci := GetConfig()
	oldLevel := ci.LogLevel
	defer func() { ci.LogLevel = oldLevel }()

	ci.LogLevel = LogLevelNotice
	out := captureLog(t, func() {
		Errorf(nil, "an error %d", 1)
		Logf("thing", "a notice")
		Infof(nil, "some info")
		Debugf(nil, "some debug")
	})
	assert.Contains(t, out, "ERROR : an error 1")
	assert.Contains(t, out, "NOTICE: thing: a notice")
	assert.NotContains(t, out, "some info")
	assert.NotContains(t, out, "some debug")

	ci.LogLevel = LogLevelDebug
	out = captureLog(t, func() {
		Infof(nil, "some info")
		Debugf(nil, "some debug")
	})
	assert.Contains(t, out, "INFO  : some info")
	assert.Contains(t, out, "DEBUG : some debug")
}

func TestLogJSON(t *testing.T) {
	ci := GetConfig()
	oldJSON := ci.UseJSONLog
	defer func() { ci.UseJSONLog = oldJSON }()
	ci.UseJSONLog = true

	var buf bytes.Buffer
	logger := logrus.StandardLogger()
	oldOut, oldFormatter := logger.Out, logger.Formatter
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	defer func() {
		logger.SetOutput(oldOut)
		logger.SetFormatter(oldFormatter)
	}()

	Errorf("app.mjs", "failed: %v", "boom")
	assert.Contains(t, buf.String(), `"msg":"failed: boom"`)
	assert.Contains(t, buf.String(), `"object":"app.mjs"`)
	assert.Contains(t, buf.String(), `"objectType":"string"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestOptionToEnv(t *testing.T) {
	assert.Equal(t, "CHOREOSERVE_LOG_FILE", OptionToEnv("log-file"))
	assert.Equal(t, "CHOREOSERVE_ADDR", OptionToEnv("addr"))
}
