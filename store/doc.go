// Package store records previously generated identities into a table,
// rejecting duplicates and optionally tagging each identity with a mob.
//
// A mob is a grouping label (for example a batch or tenant) stored
// alongside the identity. Whether a Store accepts mobs is fixed by its
// [Config]: with an empty MobColumn every mob is rejected up front.
//
// # Connections
//
// The Store issues exactly one insert per call through a [Conn]:
//
//	type Conn interface {
//	    Insert(ctx context.Context, table string, row Row) error
//	}
//
// Constraint violations are recognised by a SQLSTATE in class "23"
// anywhere in the returned error chain. Adapters for SQLite and DynamoDB
// live in the sqlstore and dynamo packages.
//
// # Configuration
//
//	cfg := store.DefaultConfig()
//	cfg.MobColumn = "mob"
//	s := store.New(conn, cfg)
//
// # Errors
//
// Every failure is an [*Error] carrying the attempted identity and mob.
// Its Kind matches one of the sentinels:
//
//   - [ErrMobsUnsupported] - a mob was given but no mob column is configured
//   - [ErrNonUniqueIdentity] - the identity already exists; generate another
//   - [ErrDataStore] - any other storage failure, cause is wrapped
package store
