// Package model defines the domain types shared across the service.
package model

// DefaultAgent is recorded when the caller does not identify itself.
const DefaultAgent = "null"

// InstallEvent is one attributed installation request.
type InstallEvent struct {
	Package      string `json:"crate"`
	Version      string `json:"version"`
	Architecture string `json:"target"`
	Agent        string `json:"agent"`
}

// Field returns the counter field name "{package}/{version}/{architecture}".
func (e InstallEvent) Field() string {
	return e.Package + "/" + e.Version + "/" + e.Architecture
}

// AgentOrDefault returns the agent string, falling back to DefaultAgent.
func (e InstallEvent) AgentOrDefault() string {
	if e.Agent == "" {
		return DefaultAgent
	}
	return e.Agent
}

// Counts maps a counter field to its value.
type Counts map[string]int64
