package ratelimit

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WritePolicy bounds mutating traffic. Rates are tokens per second.
type WritePolicy struct {
	GlobalRate     float64 `mapstructure:"globalRate"`
	GlobalBurst    int     `mapstructure:"globalBurst"`
	PerClientRate  float64 `mapstructure:"perClientRate"`
	PerClientBurst int     `mapstructure:"perClientBurst"`
}

func DefaultWritePolicy() WritePolicy {
	return WritePolicy{
		GlobalRate:     50,
		GlobalBurst:    100,
		PerClientRate:  5,
		PerClientBurst: 10,
	}
}

// PolicyHolder serves the active write policy and hot-reloads it when the
// ratelimit config file changes on disk.
type PolicyHolder struct {
	current atomic.Value // holds WritePolicy
}

func NewPolicyHolder() (*PolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("ratelimit")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/pokedex/config") // Volume-mounted config
	v.AddConfigPath("/etc/pokedex")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("POKEDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultWritePolicy()
		v.SetDefault("write.globalRate", defaults.GlobalRate)
		v.SetDefault("write.globalBurst", defaults.GlobalBurst)
		v.SetDefault("write.perClientRate", defaults.PerClientRate)
		v.SetDefault("write.perClientBurst", defaults.PerClientBurst)
	}

	var policy WritePolicy
	if err := v.UnmarshalKey("write", &policy); err != nil {
		return nil, err
	}
	if err := validateWritePolicy(policy); err != nil {
		return nil, err
	}

	holder := &PolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated WritePolicy
		if err := v.UnmarshalKey("write", &updated); err != nil {
			log.Printf("[ratelimit-config] reload failed: %v", err)
			return
		}
		if err := validateWritePolicy(updated); err != nil {
			log.Printf("[ratelimit-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[ratelimit-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *PolicyHolder) Get() WritePolicy {
	return h.current.Load().(WritePolicy)
}

func validateWritePolicy(p WritePolicy) error {
	if p.GlobalRate <= 0 || p.GlobalBurst <= 0 {
		return errors.New("ratelimit write.global rate and burst must be positive")
	}
	if p.PerClientRate <= 0 || p.PerClientBurst <= 0 {
		return errors.New("ratelimit write.perClient rate and burst must be positive")
	}
	return nil
}
