// Package config provides the run configuration for top3colors.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and command-line flags applied by the caller. The file
// is read from the path given with --config, or from
// $XDG_CONFIG_HOME/top3colors/config.yaml when that exists.
//
// Example file:
//
//	timeout: 30s
//	user_agent: my-crawler/2.0
//	proxy: socks5://127.0.0.1:9050
//	max_body_bytes: 104857600
//	worker_memory_bytes: 268435456
package config
