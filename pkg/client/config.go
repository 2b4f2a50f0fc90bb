package client

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/hindenbug/statsd"
)

// Config holds the client configuration. The zero BatchSize selects direct mode.
type Config struct {
	Host            string
	Port            int
	Namespace       string
	BatchSize       int
	MaxQueueDepth   int
	PoolSize        int
	MaxPacketSize   int
	DropLogInterval time.Duration
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	return Config{
		Host:            statsd.DefaultHost,
		Port:            statsd.DefaultPort,
		BatchSize:       statsd.DefaultBatchSize,
		PoolSize:        statsd.DefaultPoolSize,
		MaxPacketSize:   statsd.DefaultMaxPacketSize,
		DropLogInterval: statsd.DefaultDropLogInterval,
	}
}

// ConfigFromViper reads a Config from v. Parameters missing from v take their default value.
func ConfigFromViper(v *viper.Viper) Config {
	v.SetDefault(statsd.ParamHost, statsd.DefaultHost)
	v.SetDefault(statsd.ParamPort, statsd.DefaultPort)
	v.SetDefault(statsd.ParamNamespace, "")
	v.SetDefault(statsd.ParamBatchSize, statsd.DefaultBatchSize)
	v.SetDefault(statsd.ParamMaxQueueDepth, 0)
	v.SetDefault(statsd.ParamPoolSize, statsd.DefaultPoolSize)
	v.SetDefault(statsd.ParamMaxPacketSize, statsd.DefaultMaxPacketSize)
	v.SetDefault(statsd.ParamDropLogInterval, statsd.DefaultDropLogInterval)

	return Config{
		Host:            v.GetString(statsd.ParamHost),
		Port:            v.GetInt(statsd.ParamPort),
		Namespace:       v.GetString(statsd.ParamNamespace),
		BatchSize:       v.GetInt(statsd.ParamBatchSize),
		MaxQueueDepth:   v.GetInt(statsd.ParamMaxQueueDepth),
		PoolSize:        v.GetInt(statsd.ParamPoolSize),
		MaxPacketSize:   v.GetInt(statsd.ParamMaxPacketSize),
		DropLogInterval: v.GetDuration(statsd.ParamDropLogInterval),
	}
}

// Address returns the collector address in host:port form.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
