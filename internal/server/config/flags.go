package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-w string   HTTP bind address (e.g. ":8080")
//	-o string   comma-separated CORS origins for the HTTP API ("*" for any)
//	-d string   database DSN (memory://, postgres://..., sqlite://path)
//	-s string   HMAC signing key, at least 32 bytes
//	-i string   token issuer
//	-u string   token audience
//	-t int      token lifetime, minutes
//	-e bool     accept the empty string as an identity
//	-l string   log format: json, text or zap
//	-v bool     debug logging
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-w", "-o", "-d", "-s", "-i", "-u", "-t", "-l"},
		"-e", "-v")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	origins := fs.String("o", strings.Join(config.CORSOrigins, ","), "allowed CORS origins, comma-separated")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing key")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")
	fs.StringVar(&config.Audience, "u", config.Audience, "token audience")
	ttl := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.BoolVar(&config.AllowEmptyIdentity, "e", config.AllowEmptyIdentity, "allow empty identity")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (json|text|zap)")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t and -o only override when given, so sub-minute TTLs and origin
	// lists from env or JSON survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenTTL = time.Duration(*ttl) * time.Minute
		case "o":
			config.CORSOrigins = splitList(*origins)
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
