// Package observability records tl actions as structured JSON Lines events
// and derives usage statistics from them on demand.
package observability
