// Package settings is the per-instance key/value configuration store. Keys
// are scoped: a scope is an instance name or a connection end's string form
// ("instance.interface"). Lookups return presence explicitly so callers can
// apply their own defaults.
package settings
