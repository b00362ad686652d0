//go:build !uvmesh_strict

package uvmesh

const strict = false
