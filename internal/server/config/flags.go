package config

import (
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/draftkeeper/internal/flagx"
)

// BindFlags registers the server flags on fs.
//
//	-c, --config             config file
//	-a, --grpc-addr          gRPC bind address (e.g., ":50051")
//	    --http-addr          health endpoint bind address
//	-d, --database-dsn       PostgreSQL DSN
//	-s, --secret-key         JWT HMAC secret key
//	-t, --access-token-ttl   access token lifetime
//	-r, --redis-url          idempotency store URL
//	    --idempotency-ttl    how long create keys are remembered
//	-b, --s3-bucket          revision archive bucket
//	-g, --s3-region          S3 region
//	-e, --s3-base-endpoint   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u, --s3-access-key      S3 access key
//	-p, --s3-secret-key      S3 secret key
//	    --log-level, --log-format
func BindFlags(fs *pflag.FlagSet) {
	flagx.AddConfigFlag(fs)
	fs.StringP("grpc-addr", "a", "", "address and port to run the gRPC server")
	fs.String("http-addr", "", "address and port for health endpoints")
	fs.StringP("database-dsn", "d", "", "database DSN")
	fs.StringP("secret-key", "s", "", "secret key")
	fs.DurationP("access-token-ttl", "t", 0, "access token validity")
	fs.StringP("redis-url", "r", "", "redis URL for create idempotency keys")
	fs.Duration("idempotency-ttl", 0, "idempotency key lifetime")
	fs.StringP("s3-bucket", "b", "", "S3 bucket for document revisions")
	fs.StringP("s3-region", "g", "", "S3 region")
	fs.StringP("s3-base-endpoint", "e", "", "S3 base endpoint")
	fs.StringP("s3-access-key", "u", "", "S3 access key")
	fs.StringP("s3-secret-key", "p", "", "S3 secret key")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json or text")
}
