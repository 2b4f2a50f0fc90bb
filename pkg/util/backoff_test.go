package util

import (
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"github.com/tilinna/clock"
)

func newByViper(policy string, interval, maxTime time.Duration, maxCount int64) (BackoffFactory, error) {
	v := viper.New()
	v.Set(ParamRetryInterval, interval)
	v.Set(ParamRetryMaxCount, maxCount)
	v.Set(ParamRetryMaxTime, maxTime)
	v.Set(ParamRetryPolicy, policy)
	return GetRetryFromViper(v)
}

func TestDisabledRetries(t *testing.T) {
	t.Parallel()
	f, err := newByViper(PolicyDisabled, 10*time.Second, 10*time.Second, 10)
	require.NoError(t, err)
	require.NotNil(t, f)

	bo := f(clock.Realtime())
	require.Equal(t, backoff.Stop, bo.NextBackOff())
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	f, err := GetRetryFromViper(viper.New())
	require.NoError(t, err)

	bo := f(clock.Realtime())
	for i := 0; i < DefaultRetryMaxCount; i++ {
		require.NotEqual(t, backoff.Stop, bo.NextBackOff())
	}
	require.Equal(t, backoff.Stop, bo.NextBackOff())
}

func TestConstantInterval(t *testing.T) {
	t.Parallel()
	f, err := newByViper(PolicyConstant, 1*time.Second, 10*time.Second, 0)
	require.NoError(t, err)
	require.NotNil(t, f)

	bo := f(clock.Realtime())
	for i := 0; i < 10; i++ {
		// Ensure it doesn't start growing
		d := bo.NextBackOff()
		require.LessOrEqual(t, uint64(d), uint64(time.Second*2))
		require.GreaterOrEqual(t, uint64(d), uint64(time.Second/2))
	}
}

func TestConstantIntervalMaxCount(t *testing.T) {
	t.Parallel()
	f, err := newByViper(PolicyConstant, 1*time.Second, 10*time.Second, 10)
	require.NoError(t, err)
	require.NotNil(t, f)

	bo := f(clock.Realtime())
	for i := 0; i < 10; i++ {
		d := bo.NextBackOff()
		require.NotEqual(t, backoff.Stop, d)
	}
	d := bo.NextBackOff()
	require.Equal(t, backoff.Stop, d)
}

func TestMaxTimeUsesClock(t *testing.T) {
	t.Parallel()
	f, err := newByViper(PolicyConstant, 1*time.Second, 10*time.Second, 0)
	require.NoError(t, err)

	clck := clock.NewMock(time.Unix(1, 0))
	bo := f(clck)
	require.NotEqual(t, backoff.Stop, bo.NextBackOff())
	clck.Add(11 * time.Second)
	require.Equal(t, backoff.Stop, bo.NextBackOff())
}

func TestExponentialInterval(t *testing.T) {
	t.Parallel()
	f, err := newByViper(PolicyExponential, 1*time.Second, 10*time.Second, 0)
	require.NoError(t, err)
	require.NotNil(t, f)

	bo := f(clock.Realtime())
	prevInterval := time.Duration(0)
	for i := 0; i < 10; i++ {
		// Ensure it grows.  We need the scaling factor to account for the randomization in the interval.
		d := bo.NextBackOff()
		require.GreaterOrEqual(t, uint64(d), uint64(prevInterval/2))
		prevInterval = d
	}
}

func TestInvalidConfigurations(t *testing.T) {
	tests := []struct {
		interval time.Duration
		maxCount int64
		maxTime  time.Duration
		policy   string
		failure  string
	}{
		{-1 * time.Second, 0, 1 * time.Second, PolicyConstant, ParamRetryInterval},
		{0, 0, 1 * time.Second, PolicyConstant, ParamRetryInterval},
		{1 * time.Second, -1, 1 * time.Second, PolicyConstant, ParamRetryMaxCount},
		{1 * time.Second, 0, -1 * time.Second, PolicyConstant, ParamRetryMaxTime},
		{1 * time.Second, 0, 0, PolicyConstant, ParamRetryMaxTime},
		{1 * time.Second, 1, 1 * time.Second, "invalid", ParamRetryPolicy},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			f, err := newByViper(test.policy, test.interval, test.maxTime, test.maxCount)
			require.Nil(t, f)
			require.Error(t, err)
			require.Contains(t, err.Error(), test.failure)
		})
	}
}

func TestRetryFlagsBindToViper(t *testing.T) {
	t.Parallel()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddRetryFlags(fs)
	v := viper.New()
	require.NoError(t, v.BindPFlags(fs))
	require.NoError(t, fs.Parse([]string{"--" + ParamRetryPolicy, PolicyDisabled}))

	f, err := GetRetryFromViper(v)
	require.NoError(t, err)
	require.Equal(t, backoff.Stop, f(clock.Realtime()).NextBackOff())
	require.Equal(t, DefaultRetryInterval, v.GetDuration(ParamRetryInterval))
}
