package statsd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFlags(t *testing.T) {
	fs := &pflag.FlagSet{}
	require.NotPanics(t, func() {
		AddFlags(fs)
	})
	port, err := fs.GetInt(ParamPort)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, port)
	host, err := fs.GetString(ParamHost)
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, host)
}
