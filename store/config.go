package store

// Config holds the table mapping for the Store.
type Config struct {
	// Table is the name of the table identities are inserted into.
	// Default: "identities"
	Table string

	// IdentityColumn is the column holding the identity value. The storage
	// layer is expected to enforce uniqueness on it.
	// Default: "identity"
	IdentityColumn string

	// MobColumn is the column holding the mob label.
	// Empty means mobs are unsupported: any attempt to store an identity
	// with a mob fails with ErrMobsUnsupported.
	MobColumn string
}

// DefaultConfig returns a mapping without mob support.
func DefaultConfig() Config {
	return Config{
		Table:          "identities",
		IdentityColumn: "identity",
	}
}

// SupportsMobs reports whether a mob column is configured.
func (c Config) SupportsMobs() bool {
	return c.MobColumn != ""
}

// validate fills in defaults for blank required fields.
func (c *Config) validate() {
	if c.Table == "" {
		c.Table = "identities"
	}
	if c.IdentityColumn == "" {
		c.IdentityColumn = "identity"
	}
}
