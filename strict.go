//go:build uvmesh_strict

package uvmesh

// strict turns incomplete constraint insertion into a panic.
const strict = true
