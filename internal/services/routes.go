package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AgentRoutes maps normalized course short codes to agent engine ids. It is
// built once at startup and never mutated afterwards; Resolve is safe for
// concurrent use.
type AgentRoutes struct {
	byCode        map[string]string
	defaultEngine string
}

// NewAgentRoutes copies the route map so later mutation of the argument
// cannot leak into the routing table.
func NewAgentRoutes(routes map[string]string, defaultEngine string) *AgentRoutes {
	byCode := make(map[string]string, len(routes))
	for code, engine := range routes {
		code = normalizeCourseCode(code)
		if code == "" || strings.TrimSpace(engine) == "" {
			continue
		}
		byCode[code] = strings.TrimSpace(engine)
	}
	return &AgentRoutes{byCode: byCode, defaultEngine: strings.TrimSpace(defaultEngine)}
}

// LoadAgentRoutes reads a YAML file of the shape:
//
//	routes:
//	  MA137: projects/p/locations/l/reasoningEngines/123
//	  CS241: cs-tutor-engine
//
// An empty path yields a table with only the default engine.
func LoadAgentRoutes(path, defaultEngine string) (*AgentRoutes, error) {
	if strings.TrimSpace(path) == "" {
		return NewAgentRoutes(nil, defaultEngine), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent routes file: %w", err)
	}
	var file struct {
		Routes map[string]string `yaml:"routes"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse agent routes file: %w", err)
	}
	return NewAgentRoutes(file.Routes, defaultEngine), nil
}

// Resolve returns the engine for a course code, falling back to the default
// engine for unknown or empty codes. The default may itself be empty when
// the process is misconfigured; callers abort before generation in that case.
func (r *AgentRoutes) Resolve(courseCode string) string {
	if engine, ok := r.byCode[normalizeCourseCode(courseCode)]; ok {
		return engine
	}
	return r.defaultEngine
}

func (r *AgentRoutes) DefaultEngine() string { return r.defaultEngine }

func normalizeCourseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
