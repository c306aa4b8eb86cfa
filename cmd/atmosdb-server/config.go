package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/daniacca/atmosdb/internal/atmos"
	"github.com/daniacca/atmosdb/internal/chamber"
	"github.com/daniacca/atmosdb/internal/store"
	fsstore "github.com/daniacca/atmosdb/internal/store/fs"
	pgstore "github.com/daniacca/atmosdb/internal/store/postgres"
	s3store "github.com/daniacca/atmosdb/internal/store/s3"
	sqlitestore "github.com/daniacca/atmosdb/internal/store/sqlite"
)

const defaultSnapshotEveryTicks = 1000

// ServerConfig holds the server configuration
type ServerConfig struct {
	Addr               string
	ChamberID          string
	RulesetFile        string
	SnapshotDriver     string
	SnapshotDir        string
	SQLitePath         string
	PostgresDSN        string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string
	S3Prefix           string
	SnapshotEveryTicks int64
	LogLevel           string
}

// configResolver defines how to resolve a single configuration value
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

func serverResolvers() []configResolver {
	return []configResolver{
		{
			flagName:    "addr",
			envVarName:  "ATMOSDB_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "chamber-id",
			envVarName:  "ATMOSDB_CHAMBER_ID",
			defaultVal:  "default",
			description: "ID of the chamber created at startup",
			setter:      func(c *ServerConfig, v string) { c.ChamberID = v },
		},
		{
			flagName:    "ruleset-file",
			envVarName:  "ATMOSDB_RULESET_FILE",
			defaultVal:  "",
			description: "optional path to a JSON ruleset for the startup chamber; the standard ruleset is used otherwise",
			setter:      func(c *ServerConfig, v string) { c.RulesetFile = v },
		},
		{
			flagName:    "snapshot-driver",
			envVarName:  "ATMOSDB_SNAPSHOT_DRIVER",
			defaultVal:  string(store.DriverFS),
			description: "Snapshot store: fs, sqlite, postgres, s3 or none",
			setter:      func(c *ServerConfig, v string) { c.SnapshotDriver = strings.ToLower(v) },
		},
		{
			flagName:    "snapshot-dir",
			envVarName:  "ATMOSDB_SNAPSHOT_DIR",
			defaultVal:  "./data",
			description: "Directory where chamber snapshots are stored (fs driver)",
			setter:      func(c *ServerConfig, v string) { c.SnapshotDir = v },
		},
		{
			flagName:    "sqlite-path",
			envVarName:  "ATMOSDB_SQLITE_PATH",
			defaultVal:  "",
			description: "SQLite database file (sqlite driver); defaults to <snapshot-dir>/atmosdb.db",
			setter:      func(c *ServerConfig, v string) { c.SQLitePath = v },
		},
		{
			flagName:    "postgres-dsn",
			envVarName:  "ATMOSDB_POSTGRES_DSN",
			defaultVal:  "",
			description: "Postgres connection string (postgres driver)",
			setter:      func(c *ServerConfig, v string) { c.PostgresDSN = v },
		},
		{
			flagName:    "s3-bucket",
			envVarName:  "ATMOSDB_S3_BUCKET",
			defaultVal:  "",
			description: "Bucket holding snapshots (s3 driver)",
			setter:      func(c *ServerConfig, v string) { c.S3Bucket = v },
		},
		{
			flagName:    "s3-region",
			envVarName:  "ATMOSDB_S3_REGION",
			defaultVal:  "us-east-1",
			description: "Bucket region (s3 driver)",
			setter:      func(c *ServerConfig, v string) { c.S3Region = v },
		},
		{
			flagName:    "s3-endpoint",
			envVarName:  "ATMOSDB_S3_ENDPOINT",
			defaultVal:  "",
			description: "Custom S3 endpoint such as MinIO; enables path-style addressing",
			setter:      func(c *ServerConfig, v string) { c.S3Endpoint = v },
		},
		{
			flagName:    "s3-prefix",
			envVarName:  "ATMOSDB_S3_PREFIX",
			defaultVal:  "",
			description: "Key prefix for snapshot objects (s3 driver)",
			setter:      func(c *ServerConfig, v string) { c.S3Prefix = v },
		},
		{
			flagName:    "snapshot-every-ticks",
			envVarName:  "ATMOSDB_SNAPSHOT_EVERY_TICKS",
			defaultVal:  strconv.Itoa(defaultSnapshotEveryTicks),
			description: "How often to write snapshots (in number of ticks); 0 disables periodic snapshots",
			setter: func(c *ServerConfig, v string) {
				val, err := strconv.ParseInt(v, 10, 64)
				if err != nil || val < 0 {
					log.Printf("Invalid value for snapshot-every-ticks: %s, using default %d", v, defaultSnapshotEveryTicks)
					val = defaultSnapshotEveryTicks
				}
				c.SnapshotEveryTicks = val
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "ATMOSDB_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}
}

// loadServerConfig resolves every option from its CLI flag, then its
// environment variable, then its default.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}
	resolvers := serverResolvers()

	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}
	flag.Parse()

	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}

// loadRulesetFromFile reads, validates and builds a ruleset from a JSON file.
func loadRulesetFromFile(path string) (*chamber.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg atmos.RulesetConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid ruleset json in %s: %w", path, err)
	}

	return chamber.NewRuleset(cfg)
}

// openStore opens the snapshot store selected by cfg.SnapshotDriver. The
// "none" driver returns a nil store.
func openStore(ctx context.Context, cfg ServerConfig) (store.Store, error) {
	switch store.Driver(cfg.SnapshotDriver) {
	case store.DriverNone, "":
		return nil, nil
	case store.DriverFS:
		return fsstore.New(cfg.SnapshotDir)
	case store.DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.SnapshotDir, "atmosdb.db")
		}
		return sqlitestore.New(path)
	case store.DriverPostgres:
		return pgstore.New(ctx, cfg.PostgresDSN)
	case store.DriverS3:
		return s3store.New(ctx, s3store.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3Endpoint != "",
		})
	default:
		return nil, fmt.Errorf("unknown snapshot driver %q", cfg.SnapshotDriver)
	}
}

// applyInitialRuleset creates (or updates) the startup chamber with the ruleset
// from cfg.RulesetFile, or the standard one, and restores its last snapshot
// when the store has one.
func applyInitialRuleset(ctx context.Context, srv *Server, cfg ServerConfig) (*chamber.Chamber, error) {
	rs := chamber.StandardRuleset()
	if cfg.RulesetFile != "" {
		loaded, err := loadRulesetFromFile(cfg.RulesetFile)
		if err != nil {
			return nil, err
		}
		rs = loaded
	}

	id := chamber.ID(cfg.ChamberID)
	c, err := srv.manager.CreateChamber(id, rs)
	if errors.Is(err, chamber.ErrChamberExists) {
		if err := srv.manager.UpdateChamberRuleset(id, rs); err != nil {
			return nil, err
		}
		c, _ = srv.manager.GetChamber(id)
	} else if err != nil {
		return nil, err
	}

	if srv.manager.Store() == nil {
		return c, nil
	}
	rec, err := c.Restore(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		srv.logger.Infof("No snapshot to restore: chamber_id=%s", id)
	case err != nil:
		return nil, fmt.Errorf("restore chamber %s: %w", id, err)
	default:
		srv.logger.Infof("Chamber restored: chamber_id=%s tick=%d", id, rec.Tick)
	}
	return c, nil
}
