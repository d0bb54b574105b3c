package command

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// RunFunc executes one command and returns the reply text
type RunFunc func(ctx context.Context, req *Request) (string, error)

// Command is a prefix-delimited instruction mapped to one handler
type Command struct {
	Name        string
	Usage       string // e.g. "recent TEAM [N]"
	Example     string // e.g. "recent NYY 5"
	Description string
	Topic       string // used in error replies: "Error while getting {Topic}"
	Run         RunFunc
}

// Registry manages all registered commands
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

// NewRegistry creates a new command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
	}
}

// Register adds a command. Names are case-insensitive.
func (r *Registry) Register(cmd *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (*Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", name)
	}
	return cmd, nil
}

// List returns every registered command sorted by name
func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}
