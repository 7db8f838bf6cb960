package tools

import "sync"

// SimpleToolRegistry holds the command configurations of the subprocess
// strategies, keyed by tool name.
type SimpleToolRegistry struct {
	configs map[string]*ToolConfig
	mutex   sync.RWMutex
}

func NewSimpleToolRegistry() *SimpleToolRegistry {
	return &SimpleToolRegistry{
		configs: make(map[string]*ToolConfig),
	}
}

// RegisterTool adds or replaces a configuration.
func (r *SimpleToolRegistry) RegisterTool(config ToolConfig) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	configCopy := config
	configCopy.Args = append([]string(nil), config.Args...)
	r.configs[config.Name] = &configCopy
}

func (r *SimpleToolRegistry) GetToolConfig(name string) (*ToolConfig, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	config, exists := r.configs[name]
	if !exists {
		return nil, false
	}

	configCopy := *config
	configCopy.Args = append([]string(nil), config.Args...)
	return &configCopy, true
}

func (r *SimpleToolRegistry) GetAllToolConfigs() map[string]*ToolConfig {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*ToolConfig)
	for name, config := range r.configs {
		configCopy := *config
		configCopy.Args = append([]string(nil), config.Args...)
		result[name] = &configCopy
	}

	return result
}
