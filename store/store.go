package store

import (
	"context"
)

// Store records identities into a single configured table.
type Store struct {
	conn   Conn
	config Config
}

// New creates a new Store instance. The Store does not own conn.
func New(conn Conn, config Config) *Store {
	config.validate()
	return &Store{
		conn:   conn,
		config: config,
	}
}

// Config returns the table mapping the Store was created with.
func (s *Store) Config() Config {
	return s.config
}

// SupportsMobs reports whether identities can be stored with a mob.
func (s *Store) SupportsMobs() bool {
	return s.config.SupportsMobs()
}

// StoreIdentity inserts identity as a new row without a mob.
func (s *Store) StoreIdentity(ctx context.Context, identity string) error {
	return s.store(ctx, identity, "", false)
}

// StoreMobIdentity inserts identity as a new row tagged with mob.
// The mob is always written, including the empty string, so it requires a
// configured mob column.
func (s *Store) StoreMobIdentity(ctx context.Context, identity, mob string) error {
	return s.store(ctx, identity, mob, true)
}

func (s *Store) store(ctx context.Context, identity, mob string, hasMob bool) error {
	if hasMob && !s.config.SupportsMobs() {
		return &Error{
			Kind:     KindMobsUnsupported,
			Identity: identity,
			Mob:      mob,
			HasMob:   true,
			Reason:   "mob column is not defined",
		}
	}

	row := Row{s.config.IdentityColumn: identity}
	if hasMob {
		row[s.config.MobColumn] = mob
	}

	err := s.conn.Insert(ctx, s.config.Table, row)
	if err == nil {
		return nil
	}
	return s.mapInsertError(&Error{Identity: identity, Mob: mob, HasMob: hasMob, Err: err})
}

// mapInsertError classifies the connection failure held in e.Err.
func (s *Store) mapInsertError(e *Error) error {
	if IsConstraintViolation(e.Err) {
		e.Kind = KindNonUniqueIdentity
	} else {
		e.Kind = KindDataStore
	}
	return e
}
