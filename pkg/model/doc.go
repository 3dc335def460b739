// Package model defines the Compiled Form Representation produced by parsers
// and consumed by form instances. A Compiled value is an ordered sequence of
// static markup chunks, fields and post-indicator placeholders, plus a registry
// of fields by name, the named option sources, and a flag telling renderers
// whether the client-side script must be injected.
//
// Compiled values are built once and then treated as read-only masters. Form
// instances call Clone to obtain a structural deep copy they are free to
// mutate. The JSON codec round-trips every field variant through the
// pkg/fields registry so masters can be persisted by cache stores.
package model
