package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-p server HTTP port
//	-grpc-address grpc health listener address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "720h")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-api-url sync server base URL (client)
//	-client-db local replica file path (client)
//	-sync-interval periodic sync tick (client)
//	-sync-debounce post-edit sync delay (client)
func ParseFlags() *StructuredConfig {
	var port int
	var grpcServerAddress string
	var databaseDSN string
	var jsonConfigPath string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var apiURL string
	var clientDBPath string
	var syncInterval time.Duration
	var syncDebounce time.Duration

	flag.IntVar(&port, "p", 0, "Server HTTP port")
	flag.StringVar(&grpcServerAddress, "grpc-address", "", "Net grpc server address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 720h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&apiURL, "api-url", "", "Sync server base URL")
	flag.StringVar(&clientDBPath, "client-db", "", "Local replica file path")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync tick (e.g., 30s)")
	flag.DurationVar(&syncDebounce, "sync-debounce", 0, "Post-edit sync delay (e.g., 1s)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			ClientDB: ClientDB{
				Path: clientDBPath,
			},
		},
		Server: Server{
			Port:           port,
			GRPCAddress:    grpcServerAddress,
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			APIURL: apiURL,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			DebounceDelay: syncDebounce,
		},
		JSONFilePath: jsonConfigPath,
	}
}
