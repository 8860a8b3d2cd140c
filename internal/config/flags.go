package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"time"
)

// NetAddress is a host:port flag value.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses server flags from args.
//
// Flags:
//
//	-a                 listen address host:port
//	-d                 database DSN
//	-c, -config        JSON config file path
//	-password-hash-key password hash key
//	-token-sign-key    token signing key
//	-token-issuer      token issuer
//	-token-duration    token lifetime, e.g. 1h
//	-request-timeout   request timeout, e.g. 30s
//	-share-base-url    public origin for share links
//	-share-rps         share lookups per second per IP
//	-share-burst       share lookup burst per IP
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	var serverAddress NetAddress
	var databaseDSN, jsonConfigPath string
	var passwordHashKey, tokenSignKey, tokenIssuer string
	var tokenDuration, requestTimeout time.Duration
	var shareBaseURL string
	var shareRPS float64
	var shareBurst int

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&passwordHashKey, "password-hash-key", "", "Password hash key")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&shareBaseURL, "share-base-url", "", "Public base URL for share links")
	fs.Float64Var(&shareRPS, "share-rps", 0, "Share lookups per second per client")
	fs.IntVar(&shareBurst, "share-burst", 0, "Share lookup burst per client")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			PasswordHashKey: passwordHashKey,
			TokenSignKey:    tokenSignKey,
			TokenIssuer:     tokenIssuer,
			TokenDuration:   tokenDuration,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Share: Share{
			BaseURL:      shareBaseURL,
			ResolveRPS:   shareRPS,
			ResolveBurst: shareBurst,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns host:port, or "" when unset.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses host:port. The host must be an IP literal, "localhost" or empty.
func (a *NetAddress) Set(s string) error {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}
	if port < 1 || port > 65535 {
		return errors.New("port must be in 1..65535")
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return errors.New("incorrect IP-address provided")
	}

	a.Host = host
	a.Port = port
	return nil
}
