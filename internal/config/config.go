// Package config loads the on-disk ClusterConfig a cmd/node process needs to
// host an arrangement: the node's own identity, its client-listener port,
// the debug flag, and the full peer cluster map. It is layered strictly
// above shim — shim never imports this package.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nmota/reactorshim/shim"
)

// peerConfig is the YAML wire form of one cluster-map entry.
type peerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ClusterConfig is the decoded form of a cluster YAML file: local identity
// plus the full peer map every node in the cluster shares.
type ClusterConfig struct {
	Name       string                `yaml:"name"`
	ClientPort int                   `yaml:"client_port"`
	Debug      bool                  `yaml:"debug"`
	Peers      map[string]peerConfig `yaml:"peers"`
}

// Load parses and validates the YAML document at path.
func Load(path string) (*ClusterConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg ClusterConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return &cfg, nil
}

func (c *ClusterConfig) validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	if len(c.Peers) == 0 {
		return errors.New("peers must not be empty")
	}
	if _, ok := c.Peers[c.Name]; !ok {
		return errors.Errorf("name %q is not present in peers", c.Name)
	}
	for name, pc := range c.Peers {
		if pc.Host == "" {
			return errors.Errorf("peer %q: host is required", name)
		}
		if pc.Port <= 0 || pc.Port > 65535 {
			return errors.Errorf("peer %q: invalid port %d", name, pc.Port)
		}
	}
	if c.ClientPort <= 0 || c.ClientPort > 65535 {
		return errors.Errorf("invalid client_port %d", c.ClientPort)
	}
	return nil
}

// ClusterMap converts the decoded peer set into the in-memory form shim.Serve
// consumes.
func (c *ClusterConfig) ClusterMap() shim.ClusterMap {
	cm := make(shim.ClusterMap, len(c.Peers))
	for name, pc := range c.Peers {
		cm[shim.Name(name)] = shim.PeerAddr{Host: pc.Host, Port: pc.Port}
	}
	return cm
}

// LocalName is a typed accessor for the node's own identity.
func (c *ClusterConfig) LocalName() shim.Name {
	return shim.Name(c.Name)
}

// ApplyOverrides layers cmd/node's -name/-client-port/-debug flags over the
// file-loaded config, following the flag-plus-file idiom: the file supplies
// a shared baseline, flags let one process diverge from it (e.g. running
// every peer of a local test cluster from one YAML file with a distinct
// -name and -client-port per process).
func (c *ClusterConfig) ApplyOverrides(name string, clientPort int, debug, debugSet bool) {
	if name != "" {
		c.Name = name
	}
	if clientPort != 0 {
		c.ClientPort = clientPort
	}
	if debugSet {
		c.Debug = debug
	}
}
