// Package mocks provides test doubles for the store and service interfaces.
// Each mock accepts optional Fn overrides per method; when no override is
// set the mock falls back to its configured default values.
package mocks
