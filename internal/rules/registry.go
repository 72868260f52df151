package rules

// Factory constructs a fresh rule instance from its per-rule options block.
// Built-in rules register a Factory at program-load time via Register,
// called from each rule file's init(), so the registry is an immutable,
// lazily-built list by the time catalog construction reads it.
type Factory func(options map[string]any) Rule

type registryEntry struct {
	name    string
	factory Factory
}

var registry []registryEntry

// Register adds a named factory to the process-wide registry. Intended to
// be called from an init() function in each rule's source file.
func Register(name string, factory Factory) {
	registry = append(registry, registryEntry{name: name, factory: factory})
}

// Config is the parsed rules section of the application configuration: an
// include/exclude filter plus free-form per-rule option blocks, keyed by the
// rule's registered name.
type Config struct {
	Exclude []string
	Include []string
	Options map[string]map[string]any
}

// Build instantiates every registered factory (passing each its matching
// options block), applies exclude tokens, then include tokens, and discards
// any rule left with every descriptor disabled. The result is the active
// rule set in stable registration order.
func Build(cfg Config) []Rule {
	active := make([]Rule, 0, len(registry))
	for _, entry := range registry {
		active = append(active, entry.factory(cfg.Options[entry.name]))
	}

	for _, token := range cfg.Exclude {
		if token == "all" {
			for _, r := range active {
				for _, d := range r.Descriptors() {
					d.Enabled = false
				}
			}
			continue
		}
		for _, r := range active {
			for _, d := range r.Descriptors() {
				if d.Matches(token) {
					d.Enabled = false
				}
			}
		}
	}

	for _, token := range cfg.Include {
		for _, r := range active {
			for _, d := range r.Descriptors() {
				if d.Matches(token) {
					d.Enabled = true
				}
			}
		}
	}

	kept := active[:0]
	for _, r := range active {
		if anyEnabled(r) {
			kept = append(kept, r)
		}
	}
	return kept
}

func anyEnabled(r Rule) bool {
	for _, d := range r.Descriptors() {
		if d.Enabled {
			return true
		}
	}
	return false
}

// AllDescriptors returns every descriptor of every registered rule,
// constructed with default options, for --list-rules and validation.
func AllDescriptors() []*AchievementDescriptor {
	var out []*AchievementDescriptor
	for _, entry := range registry {
		out = append(out, entry.factory(nil).Descriptors()...)
	}
	return out
}
