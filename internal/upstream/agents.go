package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Agent is one entry of the agents directory.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Status      string `json:"status,omitempty"`
	Model       string `json:"model,omitempty"`
	CurrentTask string `json:"currentTask,omitempty"`
	LastActive  int64  `json:"lastActive,omitempty"`
}

// AgentList is the body of GET /api/agents.
type AgentList struct {
	Agents []Agent                     `json:"agents"`
	Meta   map[string]json.RawMessage `json:"meta,omitempty"`
}

// FileNode is a file or directory in an agent's workspace.
type FileNode struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Type     string     `json:"type"`
	Size     int64      `json:"size,omitempty"`
	Children []FileNode `json:"children,omitempty"`
}

// AgentFiles is the body of GET /api/agents/:id/files.
type AgentFiles struct {
	Agent    Agent                      `json:"agent"`
	Files    []FileNode                 `json:"files"`
	KeyFiles map[string]json.RawMessage `json:"keyFiles,omitempty"`
	Meta     map[string]json.RawMessage `json:"meta,omitempty"`
}

// CountFiles returns the number of non-directory nodes.
func (a *AgentFiles) CountFiles() int {
	var walk func([]FileNode) int
	walk = func(nodes []FileNode) int {
		n := 0
		for _, node := range nodes {
			if node.Type == "directory" || len(node.Children) > 0 {
				n += walk(node.Children)
				continue
			}
			n++
		}
		return n
	}
	return walk(a.Files)
}

// ListAgents fetches the agents directory.
func (c *Client) ListAgents(ctx context.Context) (*AgentList, error) {
	var out AgentList
	if err := c.get(ctx, "/api/agents", &out); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	if out.Agents == nil {
		out.Agents = []Agent{}
	}
	return &out, nil
}

// AgentFiles fetches an agent's file tree. Results are cached briefly.
func (c *Client) AgentFiles(ctx context.Context, id string) (*AgentFiles, error) {
	if files, ok := c.files.Get(id); ok {
		return files, nil
	}
	var out AgentFiles
	if err := c.get(ctx, "/api/agents/"+url.PathEscape(id)+"/files", &out); err != nil {
		return nil, fmt.Errorf("agent %s files: %w", id, err)
	}
	c.files.Put(id, &out)
	return &out, nil
}
