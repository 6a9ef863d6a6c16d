package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for errors that would make a build meaningless.
func (c *Config) Validate() error {
	if c.RootNamespace == "" {
		return fmt.Errorf("rootNamespace: required")
	}
	for _, seg := range strings.Split(c.RootNamespace, ".") {
		if !isValidNamespaceSegment(seg) {
			return fmt.Errorf("rootNamespace: segment %q is not a valid C# identifier", seg)
		}
	}

	switch c.Mode {
	case ModeDotnet, ModeJS:
	case "":
		c.Mode = DefaultMode
	default:
		return fmt.Errorf("mode: invalid value %q — must be %q or %q", c.Mode, ModeDotnet, ModeJS)
	}

	if c.EntryPoint != "" && !strings.HasSuffix(c.EntryPoint, ".ts") {
		return fmt.Errorf("entryPoint: %q must end in .ts", c.EntryPoint)
	}

	for _, ref := range c.PackageReferences {
		if !strings.Contains(ref, "@") {
			return fmt.Errorf("packageReferences: %q must be written Name@Version", ref)
		}
	}

	return nil
}

func isValidNamespaceSegment(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
