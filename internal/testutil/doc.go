// Package testutil provides test doubles shared by the arrayvc packages.
package testutil
