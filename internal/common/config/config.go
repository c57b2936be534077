package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Matching MatchingConfig `mapstructure:"matching"`
	Trust    TrustConfig    `mapstructure:"trust"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address        string `mapstructure:"address"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Matching Engine Config ---

// MatchWeights is the canonical weight profile for demand-service
// matching. Weights must sum to 1.0.
type MatchWeights struct {
	Specialization float64 `mapstructure:"specialization"`
	Location       float64 `mapstructure:"location"`
	Trust          float64 `mapstructure:"trust"`
	Time           float64 `mapstructure:"time"`
	Urgency        float64 `mapstructure:"urgency"`
	History        float64 `mapstructure:"history"`
}

func (w MatchWeights) Sum() float64 {
	return w.Specialization + w.Location + w.Trust + w.Time + w.Urgency + w.History
}

// PairWeights is the simpler profile used for direct user-to-user
// pairing, where no specialization or time dimensions exist.
type PairWeights struct {
	Trust    float64 `mapstructure:"trust"`
	Distance float64 `mapstructure:"distance"`
	Tag      float64 `mapstructure:"tag"`
	Urgency  float64 `mapstructure:"urgency"`
}

func (w PairWeights) Sum() float64 {
	return w.Trust + w.Distance + w.Tag + w.Urgency
}

type MatchingConfig struct {
	Weights         MatchWeights `mapstructure:"weights"`
	PairWeights     PairWeights  `mapstructure:"pair_weights"`
	MaxDistanceKm   float64      `mapstructure:"max_distance_km"`
	MaxZoneDistance int          `mapstructure:"max_zone_distance"`
	MinTrustScore   float64      `mapstructure:"min_trust_score"`
	DefaultLimit    int          `mapstructure:"default_limit"`
	Concurrency     int          `mapstructure:"concurrency"`
}

type TrustConfig struct {
	CacheTTL           int     `mapstructure:"cache_ttl"` // milliseconds
	HighTrustThreshold float64 `mapstructure:"high_trust_threshold"`
	DefaultScarcity    float64 `mapstructure:"default_scarcity"` // 0-10
}

// GeoConfig maps coarse zone labels to ordinal indexes, used as a
// distance proxy when no coordinates are available.
type GeoConfig struct {
	Zones map[string]int `mapstructure:"zones"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
