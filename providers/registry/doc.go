// Package registry holds the static catalog of supported providers: their
// wire shape, streaming dialect, authentication scheme, endpoints, default
// model and accepted parameters.
//
// [Default] returns the catalog embedded in the binary; [Load] and [New]
// build custom registries. Lookups return copies, so a registry never
// changes after construction and is safe for concurrent use.
package registry
