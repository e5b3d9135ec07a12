package config

import (
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/draftkeeper/internal/flagx"
)

// BindFlags registers the client flags on fs. Flag defaults are zero
// values; unset flags never override other sources.
//
//	-c, --config                  config file
//	-a, --server-addr             address:port of the server
//	-i, --online-check-interval   reachability probe interval
//	    --request-timeout         timeout for interactive calls
//	-d, --drafts-db               SQLite file for local drafts
//	    --snapshot-interval       local draft snapshot interval
//	    --push-delay              quiet period before a push
//	    --preview-fields          fields tried for recovery excerpts
//	    --log-file, --log-level   logging
//	-l, --login                   login to use at startup
func BindFlags(fs *pflag.FlagSet) {
	flagx.AddConfigFlag(fs)
	fs.StringP("server-addr", "a", "", "address and port to access server")
	fs.DurationP("online-check-interval", "i", 0, "online check interval")
	fs.Duration("request-timeout", 0, "timeout for interactive server calls")
	fs.StringP("drafts-db", "d", "", "path to the local drafts database")
	fs.Duration("snapshot-interval", 0, "local draft snapshot interval")
	fs.Duration("push-delay", 0, "quiet period after the last edit before pushing")
	fs.StringSlice("preview-fields", nil, "fields used for recovery excerpts")
	fs.String("log-file", "", "log file (rotated)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.StringP("login", "l", "", "login to authenticate with at startup")
}
