// Package component decodes the type information of WebAssembly Component
// Model binaries into witx interface fragments.
//
// Only the type section is interpreted. A component type (0x41) that exports
// another component type is treated as a wrapper and descended into; the
// innermost one describes a world:
//
//   - import/export of an instance type becomes an import/export interface
//   - export of a function becomes a function of the default interface
//   - import of a function becomes a function of the "default" import
//
// Type index spaces follow the binary format: type declarations, type
// aliases and type imports/exports each allocate the next index of the
// enclosing component or instance type. Types are first resolved into
// go.bytecodealliance.org/wit values and then lowered into witx arenas.
package component
