// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/cado/lib/protocol"
)

// DefaultPath is the file Load reads when no path is given.
const DefaultPath = "config.json"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the client configuration.
type Config struct {
	// Host is the server host name. It may include a port
	// ("localhost:8000"), in which case Port is ignored.
	Host string `json:"host" yaml:"host"`

	// Port is the server port.
	Port int `json:"port" yaml:"port"`

	// Path is the WebSocket endpoint path on the server.
	Path string `json:"path" yaml:"path"`

	// Secure selects wss:// instead of ws://.
	Secure bool `json:"secure" yaml:"secure"`

	// ReconnectAttempts bounds consecutive failed connection attempts
	// before the client gives up. Zero disables reconnection.
	ReconnectAttempts int `json:"reconnectAttempts" yaml:"reconnectAttempts"`

	// ReconnectInterval is the delay between attempts in milliseconds.
	// It must be positive.
	ReconnectInterval int `json:"reconnectInterval" yaml:"reconnectInterval"`

	// FrameEncoding is "auto", "single", or "double".
	FrameEncoding string `json:"frameEncoding" yaml:"frameEncoding"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Host:              "localhost",
		Port:              8000,
		Path:              "/stream",
		ReconnectAttempts: 150,
		ReconnectInterval: 2000,
		FrameEncoding:     string(protocol.FrameAuto),
	}
}

// Load reads the configuration at path (DefaultPath when empty). Keys
// absent from the file keep their defaults. A missing file yields
// Default() and no error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	config := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := Parse(data, filepath.Ext(path), &config); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// Parse decodes data over config. The extension selects the format:
// ".yaml" and ".yml" are YAML, anything else is JSON with comments.
func Parse(data []byte, extension string, config *Config) error {
	switch strings.ToLower(extension) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	default:
		return json.Unmarshal(jsonc.ToJSON(data), config)
	}
}

// Validate checks every field and returns an error wrapping ErrInvalid
// for the first problem found.
func (config Config) Validate() error {
	if strings.TrimSpace(config.Host) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalid)
	}
	if !config.hostHasPort() && (config.Port <= 0 || config.Port > 65535) {
		return fmt.Errorf("%w: port %d out of range", ErrInvalid, config.Port)
	}
	if config.ReconnectAttempts < 0 {
		return fmt.Errorf("%w: reconnectAttempts is negative", ErrInvalid)
	}
	if config.ReconnectInterval <= 0 {
		return fmt.Errorf("%w: reconnectInterval must be positive", ErrInvalid)
	}
	if _, err := protocol.ParseFrameEncoding(config.FrameEncoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// URL returns the WebSocket endpoint, for example
// ws://localhost:8000/stream.
func (config Config) URL() string {
	scheme := "ws"
	if config.Secure {
		scheme = "wss"
	}
	host := config.Host
	if !config.hostHasPort() {
		host = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	}
	path := config.Path
	if path == "" {
		path = "/stream"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	endpoint := url.URL{Scheme: scheme, Host: host, Path: path}
	return endpoint.String()
}

// ReconnectDelay returns ReconnectInterval as a duration.
func (config Config) ReconnectDelay() time.Duration {
	return time.Duration(config.ReconnectInterval) * time.Millisecond
}

// Encoding returns the parsed frame encoding. Validate has already
// rejected unknown names, so an invalid value falls back to auto.
func (config Config) Encoding() protocol.FrameEncoding {
	encoding, err := protocol.ParseFrameEncoding(config.FrameEncoding)
	if err != nil {
		return protocol.FrameAuto
	}
	return encoding
}

// hostHasPort reports whether Host already names a port.
func (config Config) hostHasPort() bool {
	_, port, err := net.SplitHostPort(config.Host)
	return err == nil && port != ""
}
