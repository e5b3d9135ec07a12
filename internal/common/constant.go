// Package common contains constants and sentinel errors shared by the
// DraftKeeper client and server.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token
// on outbound requests.
const AccessTokenHeaderName = "access_token"
