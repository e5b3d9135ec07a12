// Package client contains the client-side building blocks for talking to
// the DraftKeeper server and bootstrapping local storage.
//
// # Overview
//
// The package provides:
//  1. The Client interface: Register/Login, Ping, and the owner-scoped
//     document operations Create, Update, Fetch and List.
//  2. GRPCClient, a gRPC implementation that injects the access token via an
//     interceptor, logs in again once when the token is rejected, and maps
//     gRPC status codes to sentinel errors.
//  3. InitDatabase and RunMigrations, which open the local SQLite database
//     and apply the embedded goose migrations.
//
// # Error Handling
//
// Callers match errors with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrAlreadyExists and common.ErrorNotFound.
package client
