package flags

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, key, value string) {
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		require.NoError(t, os.Unsetenv(key))
	})
}

func TestStringVarPFromEnv(t *testing.T) {
	setEnv(t, "CHOREOSERVE_BASEURL", "/choreo")
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var baseURL string
	StringVarP(flagSet, &baseURL, "baseurl", "", "", "Prefix for URLs")
	assert.Equal(t, "/choreo", baseURL)
	assert.Equal(t, "/choreo", flagSet.Lookup("baseurl").DefValue)

	// the command line still wins
	require.NoError(t, flagSet.Parse([]string{"--baseurl", "/other"}))
	assert.Equal(t, "/other", baseURL)
}

func TestNoEnv(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var (
		sniff   bool
		timeout time.Duration
		size    int
	)
	BoolVarP(flagSet, &sniff, "sniff-content", "", false, "")
	DurationVarP(flagSet, &timeout, "server-read-timeout", "", time.Hour, "")
	IntVarP(flagSet, &size, "max-header-bytes", "", 4096, "")
	assert.False(t, sniff)
	assert.Equal(t, time.Hour, timeout)
	assert.Equal(t, 4096, size)
}

func TestStringArrayAndCountFromEnv(t *testing.T) {
	setEnv(t, "CHOREOSERVE_ADDR", ":9000")
	setEnv(t, "CHOREOSERVE_VERBOSE", "2")
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var (
		addr    []string
		verbose int
	)
	StringArrayVarP(flagSet, &addr, "addr", "", []string{":8000"}, "")
	CountVarP(flagSet, &verbose, "verbose", "v", "")
	assert.Equal(t, []string{":9000"}, addr)
	assert.Equal(t, 2, verbose)
}
