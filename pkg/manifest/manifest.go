// Package manifest defines the TOML policy table the gateway is built
// from: which routes exist, which roles may call them, which scope guard
// applies, and which credential-adjacent routes are rate limited.
package manifest

import "errors"

// Config is the top-level manifest.
type Config struct {
	Routes []Route `toml:"route"`
}

func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return errors.New("manifest has no routes")
	}
	seen := map[string]struct{}{}
	for i := range c.Routes {
		r := &c.Routes[i]
		if err := r.normalize(); err != nil {
			return err
		}
		if err := r.validate(); err != nil {
			return err
		}
		k := r.Method + " " + r.Path
		if _, dup := seen[k]; dup {
			return errors.New("duplicate route " + k)
		}
		seen[k] = struct{}{}
	}
	return nil
}
