// Package core defines the shared language of cricdash.
//
// This package contains:
//   - Schema types produced by discovery (Column, DatabaseSchema, SchemaDescriptor)
//   - Tabular results (ResultTable, Row)
//   - Analytics query templates (QueryTemplate, TableRequirement)
//   - Mutation requests and results
//   - Connection credentials (Credentials, AdapterConfig)
//   - The error taxonomy (ConnectionError, ValidationError, SchemaMismatchError, EngineExecutionError)
//
// pkg/core imports only the standard library. All other packages depend on
// core, not the reverse.
package core
