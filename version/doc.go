// Package version reports build information embedded with -ldflags and
// derives the client's default User-Agent from it.
package version
