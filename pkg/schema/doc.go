// Package schema is a client for the remote schema service that turns a
// diagram into tables.
//
// # Overview
//
// The service exposes two operations per project:
//
//   - [Client.GenerateSQL] derives a table schema (DSD) from a diagram and
//     returns it together with SQL DDL for one dialect and a validation
//     report.
//   - [Client.Normalize] decomposes the derived tables into BCNF or 3NF
//     given a set of functional dependencies, and reports what changed.
//
// The diagram is sent in the same wire format the layout engine reads, so a
// laid-out diagram can be passed through unchanged. When no diagram is
// sent, the service falls back to the project's saved diagram.
//
// # Functional Dependencies
//
// [ParseDependencies] reads dependencies written by hand:
//
//	deps := schema.ParseDependencies("isbn -> title, year; author_id -> author_name")
//
// Each side is a comma-separated list, a space-separated list, a single
// name, or a run of single-letter attributes ("AB -> C").
//
// # Transport
//
// Requests carry a bearer token and a fresh X-Request-ID. Transport errors,
// 429 and 5xx responses are retried with exponential backoff. Other 4xx
// responses become coded errors from pkg/errors carrying the service's own
// message. Successful responses are cached by a hash of the request body.
package schema
