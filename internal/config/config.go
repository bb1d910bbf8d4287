// Package config handles process configuration for gacha-curve: listen
// addresses, the catalog directory and calculation limits. Both the server
// and gachacalc use it.
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Viper-based config loader
func Init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".gacha-curve")
	viper.AddConfigPath(home)
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("GACHA")
	viper.AutomaticEnv()
	SetDefaults(viper.GetViper())
	err = viper.ReadInConfig() // ignore error if config file missing
	if err != nil {
		log.Printf("viper can't read config file: %v", err)
	}
	log.Printf("Using data dir: %s", DataDir())
	log.Printf("Using listen address: %s (grpc %s)", ListenAddress(), GRPCAddress())
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", ":8080")
	v.SetDefault("grpc_address", ":9090")
	v.SetDefault("data_dir", "./config")
	v.SetDefault("cache_size", 64)
	v.SetDefault("max_pulls_limit", 2000)
	v.SetDefault("compute_timeout", 30*time.Second)
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("watch", true)
}

func ListenAddress() string {
	return viper.GetString("listen_address")
}

func GRPCAddress() string {
	return viper.GetString("grpc_address")
}

func DataDir() string {
	return viper.GetString("data_dir")
}

func CacheSize() int {
	return viper.GetInt("cache_size")
}

func MaxPullsLimit() int {
	return viper.GetInt("max_pulls_limit")
}

func ComputeTimeout() time.Duration {
	return viper.GetDuration("compute_timeout")
}

func AllowedOrigins() []string {
	return viper.GetStringSlice("allowed_origins")
}

func Watch() bool {
	return viper.GetBool("watch")
}
