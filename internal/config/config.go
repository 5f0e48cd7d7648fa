package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"blackjack_ai/internal/agent"
)

type Config struct {
	Addr      string
	StaticDir string

	AgentPath     string
	TrainEpisodes int
	ReportEvery   int
	Agent         agent.Config
	Seed          int64

	SessionSecret string
	SessionTTL    time.Duration
	SessionIdle   time.Duration

	// DatabaseURL switches table persistence from AgentPath to Postgres.
	DatabaseURL string
	TableName   string

	// DebugVars mounts expvar's /debug/vars on the public router.
	DebugVars bool
}

// Load reads .env files (if present) and then the process environment.
// Values already set in the environment win over .env. A key that is set
// but does not parse is an error rather than a silent default.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var p parser
	c := &Config{
		Addr:          getenv("ADDR", ":8080"),
		StaticDir:     getenv("STATIC_DIR", "web/static"),
		AgentPath:     getenv("AGENT_PATH", "trained_agent.gob"),
		TrainEpisodes: p.int("TRAIN_EPISODES", 10000),
		ReportEvery:   p.int("REPORT_EVERY", 1000),
		Agent: agent.Config{
			Epsilon: p.float("EPSILON", 0.1),
			Alpha:   p.float("ALPHA", 0.1),
			Gamma:   p.float("GAMMA", 0.9),
		},
		Seed:          p.int64("SEED", 0),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    time.Duration(p.int("SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionIdle:   time.Duration(p.int("SESSION_IDLE_MINUTES", 60)) * time.Minute,
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TableName:     getenv("TABLE_NAME", "default"),
		DebugVars:     p.bool("DEBUG_VARS", false),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent config: %w", err)
	}
	if c.TrainEpisodes < 0 {
		return fmt.Errorf("TRAIN_EPISODES must not be negative, got %d", c.TrainEpisodes)
	}
	if c.SessionTTL <= 0 || c.SessionIdle <= 0 {
		return fmt.Errorf("session TTL and idle timeout must be positive")
	}
	return nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// parser reads typed keys and keeps the first malformed one.
type parser struct {
	err error
}

func (p *parser) lookup(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(k))
	return v, v != "" && p.err == nil
}

func (p *parser) fail(k, v, kind string) {
	p.err = fmt.Errorf("%s: invalid %s %q", k, kind, v)
}

func (p *parser) int(k string, def int) int {
	v, ok := p.lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(k, v, "integer")
		return def
	}
	return n
}

func (p *parser) int64(k string, def int64) int64 {
	v, ok := p.lookup(k)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(k, v, "integer")
		return def
	}
	return n
}

func (p *parser) float(k string, def float64) float64 {
	v, ok := p.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(k, v, "number")
		return def
	}
	return f
}

func (p *parser) bool(k string, def bool) bool {
	v, ok := p.lookup(k)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(k, v, "boolean")
		return def
	}
	return b
}
