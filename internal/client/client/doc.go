// Package client talks to the PaperSwipe server.
//
// GRPCClient manages the connection, injects the access token through a
// unary interceptor, refreshes an expired token once and retries, and maps
// gRPC status codes to the sentinel errors of this package
// (ErrUnavailable, ErrUnauthorized, ErrAlreadyKept, ErrNotFound).
//
// The kept-item methods satisfy kept.RemoteStore, so the sync engine can use
// a GRPCClient as its remote mirror.
package client
