// Package workspace performs the file-system side of the editor: checking a
// chosen output directory, writing workflow documents and generated images
// into it, and opening the platform's native folder picker.
//
// Errors carry codes from internal/errors so handlers can tell a bad request
// (missing field, missing directory) from a server-side failure.
package workspace
