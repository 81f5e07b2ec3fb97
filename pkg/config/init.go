package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned when a template would overwrite a file and
// force is not set.
var ErrConfigExists = errors.New("config file already exists")

const templateHeader = `# DittoHTTP Configuration File
#
# Every key can be overridden with an environment variable:
# DITTOHTTP_<SECTION>_<KEY>, e.g. DITTOHTTP_ADAPTERS_HTTP_PORT=8080.
`

// keyComments documents template keys by dotted path.
var keyComments = map[string]string{
	"logging":                            "Log output",
	"logging.level":                      "DEBUG, INFO, WARN or ERROR",
	"logging.format":                     "text or json",
	"logging.output":                     "stdout, stderr or a file path",
	"server":                             "Process-wide settings",
	"server.shutdown_timeout":            "How long adapters get to finish in-flight requests",
	"server.metrics":                     "Prometheus metrics and access statistics endpoint",
	"adapters":                           "Protocol adapters",
	"adapters.http":                      "Static file server",
	"adapters.http.name":                 "Sent in the Server header",
	"adapters.http.html_root":            "Directory files are served from",
	"adapters.http.threads":              "Worker pool size",
	"adapters.http.timeout":              "Bound on reading one request head (1s, 1000ms; a bare number means milliseconds)",
	"adapters.http.backlog":              "Kernel accept queue length",
	"adapters.http.buffer_size":          "Request buffer and body chunk size in bytes (min 2048)",
	"adapters.http.teapot":               "Answer a fixed subset of connections with 418",
	"adapters.http.rate_limit":           "Accept throttling; requests_per_second 0 means unlimited",
	"adapters.http.metrics_log_interval": "How often pool metrics are logged; 0 disables",
	"stats":                              "Per-path access statistics",
	"stats.type":                         "none, memory or badger",
	"stats.memory.max_paths":             "Distinct paths tracked; 0 means unlimited",
}

// InitConfig writes a default configuration to the default location and
// returns its path.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigAt(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigAt writes a default configuration to path, creating parent
// directories. An existing file is kept unless force is set.
func InitConfigAt(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s (use force to overwrite)", ErrConfigExists, path)
		}
	}

	content, err := generateYAMLWithComments(GetDefaultConfig())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateYAMLWithComments renders cfg as YAML keyed by its mapstructure
// tags, with keyComments attached above the matching keys.
func generateYAMLWithComments(cfg *Config) (string, error) {
	var tree map[string]any
	if err := mapstructure.Decode(cfg, &tree); err != nil {
		return "", fmt.Errorf("failed to flatten config: %w", err)
	}

	var root yaml.Node
	if err := root.Encode(tree); err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	annotate(&root, "")

	var b strings.Builder
	b.WriteString(templateHeader)
	b.WriteString("\n")

	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	return b.String(), nil
}

func annotate(node *yaml.Node, prefix string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}
		if c, ok := keyComments[path]; ok {
			key.HeadComment = c
		}
		annotate(value, path)
	}
}
