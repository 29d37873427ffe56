package cli

import (
	"github.com/agentguard/agentguard/internal/arbiter"
	"github.com/agentguard/agentguard/internal/audit"
	"github.com/agentguard/agentguard/internal/config"
	"github.com/agentguard/agentguard/internal/engine"
	"github.com/agentguard/agentguard/internal/intel"
	"github.com/agentguard/agentguard/internal/registry"
)

// runtime bundles the long-lived components a command needs.
type runtime struct {
	cfg      *config.Config
	level    arbiter.Level
	registry *registry.Registry
	scanner  *engine.Scanner
	audit    *audit.Logger
}

// newRuntime loads config and wires the registry, threat intel and
// engine. The audit logger is optional: a failure to open it leaves the
// field nil and commands log best-effort.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Level
	if levelFlag != "" {
		level, err = arbiter.ParseLevel(levelFlag)
		if err != nil {
			return nil, err
		}
	}

	reg := registry.New(registry.NewStore(cfg.RegistryPath()))

	var client intel.Client
	if key, secret := config.GoPlusCredentials(); key != "" && secret != "" {
		client = intel.NewGoPlus(key, secret)
	}

	rt := &runtime{
		cfg:      cfg,
		level:    level,
		registry: reg,
		scanner:  engine.New(reg, client),
	}
	if logger, err := audit.Open(cfg.AuditPath()); err == nil {
		rt.audit = logger
	}
	return rt, nil
}

func (rt *runtime) close() {
	if rt.audit != nil {
		_ = rt.audit.Close()
	}
}

// log appends an audit entry, swallowing failures.
func (rt *runtime) log(entry audit.Entry) {
	if rt.audit == nil {
		return
	}
	_ = rt.audit.Log(entry)
}
