// Package internal contains the core implementation packages for partials.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - types: Definition, Invocation and ordered Props shared by every package
//   - parser: component definition files and invocation lines
//   - registry: name to definition lookup with change events
//   - scanner: loads a components folder into the registry
//   - renderer: placeholder substitution, CSS scoping and component scripts
//   - document: finds invocations in markdown and renders whole documents
//   - scaffolding: starter and template-based component files
//   - server: preview server with websocket live reload
//   - watcher: debounced file system monitoring
//   - config, errors, logging, version: ambient support
//
// # Inter-Package Communication
//
//   - Scanner parses files and populates the registry
//   - Registry broadcasts changes, which the server forwards as reloads
//   - Document resolves invocations against the registry and hands them to
//     the renderer
//   - Watcher feeds changed paths back into the scanner
//
// # Testing Strategy
//
// Packages carry testify table tests, native fuzz targets for the parsers
// and escaping, and gopter properties behind the "property" build tag:
//
//	go test -tags property ./internal/...
package internal
