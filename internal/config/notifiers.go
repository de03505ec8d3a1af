package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// NotifierEntry is the e-mail notifier declared for one project.
type NotifierEntry struct {
	Recipients []string `yaml:"recipients"`
	From       string   `yaml:"from"`
}

// NotifierRegistry holds the project notifiers declared in notifiers.yaml.
//
// Example:
//
//	myproj:
//	  recipients: [dev@example.com, qa@example.com]
//	  from: ci@example.com
//	other:
//	  recipients: ["${ENV:OTHER_TEAM_LIST}"]
type NotifierRegistry struct {
	projects map[string]NotifierEntry
}

// Projects returns the declared project names in sorted order.
func (r *NotifierRegistry) Projects() []string {
	names := make([]string, 0, len(r.projects))
	for name := range r.projects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Get returns the entry of project and whether it exists.
func (r *NotifierRegistry) Get(project string) (NotifierEntry, bool) {
	e, ok := r.projects[project]
	return e, ok
}

// Len returns the number of declared projects.
func (r *NotifierRegistry) Len() int {
	return len(r.projects)
}

// LoadNotifierRegistry reads the notifier YAML file at filePath. A missing
// file yields an empty registry. ${ENV:VAR} references in recipients and
// from are expanded.
func LoadNotifierRegistry(filePath string) (*NotifierRegistry, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is from admin-configured data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &NotifierRegistry{projects: make(map[string]NotifierEntry)}, nil
		}
		return nil, fmt.Errorf("reading notifier registry %q: %w", filePath, err)
	}

	var raw map[string]NotifierEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing notifier registry %q: %w", filePath, err)
	}

	registry := &NotifierRegistry{projects: make(map[string]NotifierEntry, len(raw))}
	for name, entry := range raw {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("notifier registry %q: empty project name", filePath)
		}

		from, err := interpolateEnv(entry.From)
		if err != nil {
			return nil, fmt.Errorf("project %q from: %w", name, err)
		}
		recipients := make([]string, 0, len(entry.Recipients))
		for _, r := range entry.Recipients {
			expanded, err := interpolateEnv(r)
			if err != nil {
				return nil, fmt.Errorf("project %q recipients: %w", name, err)
			}
			for _, addr := range strings.Split(expanded, ",") {
				if addr = strings.TrimSpace(addr); addr != "" {
					recipients = append(recipients, addr)
				}
			}
		}
		registry.projects[name] = NotifierEntry{Recipients: recipients, From: from}
	}

	return registry, nil
}

// interpolateEnv replaces all ${ENV:VAR_NAME} patterns in s with the corresponding
// environment variable values. Returns an error if a referenced variable is not set.
func interpolateEnv(s string) (string, error) {
	result := s
	for {
		start := strings.Index(result, "${ENV:")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}")
		if end == -1 {
			break
		}
		end += start
		varName := result[start+6 : end]
		value := os.Getenv(varName)
		if value == "" {
			return "", fmt.Errorf("required env var %q is not set", varName)
		}
		result = result[:start] + value + result[end+1:]
	}
	return result, nil
}
