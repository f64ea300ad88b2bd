// Package utils converts loosely typed attribute values (decoded JSON, database
// columns) into the scalar forms declarative rules compare against.
package utils
