package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tilinna/clock"
)

const (
	ParamRetryInterval = "retry-interval"  // constant
	ParamRetryMaxCount = "retry-max-count" // constant + exponential
	ParamRetryMaxTime  = "retry-max-time"  // constant + exponential
	ParamRetryPolicy   = "retry-policy"

	DefaultRetryInterval = 100 * time.Millisecond // constant
	DefaultRetryMaxCount = 3                      // constant + exponential
	DefaultRetryMaxTime  = 2 * time.Second        // constant + exponential
	DefaultRetryPolicy   = PolicyConstant

	PolicyConstant    = "constant"
	PolicyDisabled    = "disabled"
	PolicyExponential = "exponential"
)

// BackoffFactory creates a fresh backoff.BackOff driven by the supplied clock.
type BackoffFactory func(clck clock.Clock) backoff.BackOff

// NoRetries is a BackoffFactory which gives up straight away.
func NoRetries(clock.Clock) backoff.BackOff {
	return &backoff.StopBackOff{}
}

// NewBackoffFactory creates a new BackoffFactory based on a backoff.ExponentialBackoff
//
// backoff.ConstantBackoff lacks randomization of the interval and a maximum duration, so a
// backoff.ExponentialBackOff with a Multiplier of 1.0 is used as a replacement.
func NewBackoffFactory(multiplier float64, maxElapsedTime, interval time.Duration, maxRetries uint64) BackoffFactory {
	return func(clck clock.Clock) backoff.BackOff {
		bo := backoff.NewExponentialBackOff()
		bo.Clock = clck
		bo.Multiplier = multiplier
		bo.MaxElapsedTime = maxElapsedTime
		bo.InitialInterval = interval
		bo.Reset() // Reset is required to make the InitialInterval and Clock changes take effect.
		if maxRetries == 0 {
			return bo
		}
		return backoff.WithMaxRetries(bo, maxRetries)
	}
}

// AddRetryDefaults registers the retry parameters and their defaults on v.
func AddRetryDefaults(v *viper.Viper) {
	v.SetDefault(ParamRetryInterval, DefaultRetryInterval)
	v.SetDefault(ParamRetryMaxCount, DefaultRetryMaxCount)
	v.SetDefault(ParamRetryMaxTime, DefaultRetryMaxTime)
	v.SetDefault(ParamRetryPolicy, DefaultRetryPolicy)
}

// AddRetryFlags adds the retry parameters to fs.
func AddRetryFlags(fs *pflag.FlagSet) {
	fs.String(ParamRetryPolicy, DefaultRetryPolicy, "Dial retry policy: "+PolicyDisabled+", "+PolicyConstant+" or "+PolicyExponential)
	fs.Duration(ParamRetryInterval, DefaultRetryInterval, "Initial interval between dial attempts")
	fs.Int64(ParamRetryMaxCount, DefaultRetryMaxCount, "Maximum number of dial retries, 0 for no limit")
	fs.Duration(ParamRetryMaxTime, DefaultRetryMaxTime, "Maximum time spent retrying to dial")
}

// GetRetryFromViper builds the BackoffFactory described by the retry parameters in v.
func GetRetryFromViper(v *viper.Viper) (BackoffFactory, error) {
	AddRetryDefaults(v)

	retryInterval := v.GetDuration(ParamRetryInterval) // constant
	retryMaxCount := v.GetInt64(ParamRetryMaxCount)    // constant + exponential
	retryMaxTime := v.GetDuration(ParamRetryMaxTime)   // constant + exponential
	retryPolicy := v.GetString(ParamRetryPolicy)

	if retryInterval <= 0 {
		return nil, errors.New(ParamRetryInterval + " must be positive")
	}

	if retryMaxCount < 0 {
		return nil, errors.New(ParamRetryMaxCount + " must be zero or positive")
	}

	if retryMaxTime <= 0 {
		return nil, errors.New(ParamRetryMaxTime + " must be positive")
	}

	switch retryPolicy {
	case PolicyDisabled:
		return NoRetries, nil
	case PolicyExponential:
		return NewBackoffFactory(backoff.DefaultMultiplier, retryMaxTime, retryInterval, uint64(retryMaxCount)), nil
	case PolicyConstant:
		return NewBackoffFactory(1.0, retryMaxTime, retryInterval, uint64(retryMaxCount)), nil
	default:
		return nil, fmt.Errorf("%s (%s) not one of %s, %s, or %s", ParamRetryPolicy, retryPolicy, PolicyDisabled, PolicyConstant, PolicyExponential)
	}
}
