package config

import "time"

// ServerConfig represents the configuration for the HTTP API server
type ServerConfig struct {
	ListenAddress string
	CORSOrigins   []string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// ListSourceConfig represents the pair of upstream URLs for one domain list
type ListSourceConfig struct {
	PrimaryURL  string
	FallbackURL string
}

// ListsConfig represents the configuration for domain list fetching and caching
type ListsConfig struct {
	TTL          time.Duration
	FetchTimeout time.Duration
	FetchRetries int
	Disposable   ListSourceConfig
	Allowed      ListSourceConfig
}

// OverridesConfig represents the configuration for the personal override store
type OverridesConfig struct {
	Store      string
	SQLitePath string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		CORSOrigins:   c.GetStringSlice("server.cors_origins"),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
	}, nil
}

// GetLists returns the domain list configuration
func (c *Config) GetLists() (ListsConfig, error) {
	ttl, err := c.GetDuration("lists.ttl")
	if err != nil {
		return ListsConfig{}, err
	}
	fetchTimeout, err := c.GetDuration("lists.fetch_timeout")
	if err != nil {
		return ListsConfig{}, err
	}
	return ListsConfig{
		TTL:          ttl,
		FetchTimeout: fetchTimeout,
		FetchRetries: c.GetInt("lists.fetch_retries"),
		Disposable: ListSourceConfig{
			PrimaryURL:  c.GetString("lists.disposable.primary_url"),
			FallbackURL: c.GetString("lists.disposable.fallback_url"),
		},
		Allowed: ListSourceConfig{
			PrimaryURL:  c.GetString("lists.allowed.primary_url"),
			FallbackURL: c.GetString("lists.allowed.fallback_url"),
		},
	}, nil
}

// GetOverrides returns the override store configuration
func (c *Config) GetOverrides() OverridesConfig {
	return OverridesConfig{
		Store:      c.GetString("overrides.store"),
		SQLitePath: c.GetString("overrides.sqlite_path"),
		MySQLDSN:   c.GetString("overrides.mysql_dsn"),
		RedisAddr:  c.GetString("overrides.redis_addr"),
		RedisDB:    c.GetInt("overrides.redis_db"),
	}
}
