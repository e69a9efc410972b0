package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisURL    string
	ACLCacheTTL time.Duration

	PapersPerPage       int
	PostsPerPage        int
	PostsPerPageOrphans int
	PaperTitleMinLength int
	PaperTitleMaxLength int

	JWTSecret string
	LogLevel  string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "limitless"),

		RedisURL:    getEnv("REDIS_URL", ""),
		ACLCacheTTL: time.Duration(getEnvInt("ACL_CACHE_TTL", 60)) * time.Minute,

		PapersPerPage:       getEnvInt("PAPERS_PER_PAGE", 25),
		PostsPerPage:        getEnvInt("POSTS_PER_PAGE", 15),
		PostsPerPageOrphans: getEnvInt("POSTS_PER_PAGE_ORPHANS", 5),
		PaperTitleMinLength: getEnvInt("PAPER_TITLE_MIN_LENGTH", 5),
		PaperTitleMaxLength: getEnvInt("PAPER_TITLE_MAX_LENGTH", 90),

		JWTSecret: getEnv("JWT_SECRET", ""),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}
}

// Limits holds the page sizes that double as bulk operation limits, and
// the accepted paper title length.
type Limits struct {
	PapersPerPage       int
	PostsPerPage        int
	PostsPerPageOrphans int
	TitleMinLength      int
	TitleMaxLength      int
}

func (c *Config) Limits() Limits {
	return Limits{
		PapersPerPage:       c.PapersPerPage,
		PostsPerPage:        c.PostsPerPage,
		PostsPerPageOrphans: c.PostsPerPageOrphans,
		TitleMinLength:      c.PaperTitleMinLength,
		TitleMaxLength:      c.PaperTitleMaxLength,
	}
}

func DefaultLimits() Limits {
	return Limits{
		PapersPerPage:       25,
		PostsPerPage:        15,
		PostsPerPageOrphans: 5,
		TitleMinLength:      5,
		TitleMaxLength:      90,
	}
}

// PostsLimit is the most posts a single bulk post operation accepts.
func (l Limits) PostsLimit() int {
	return l.PostsPerPage + l.PostsPerPageOrphans
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
