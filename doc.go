// Package amiwo provides utilities for working with HTTP request payloads.
//
// This package parses application/x-www-form-urlencoded and application/json
// request bodies into a generic value map ([FormMap]) or into typed Go
// structures via reflection. Repeated form fields are represented with
// [OneOrMany], a container holding either a single value or an ordered
// collection of values.
package amiwo
