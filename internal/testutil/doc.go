// Package testutil provides shared test fixtures kept out of the public API.
package testutil
