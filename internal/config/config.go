package config

import "time"

// Config is the server configuration, loaded from the environment with
// envconfig.Process.
type Config struct {
	HTTPPort     string        `envconfig:"PORT" default:"8080"`
	MongoURI     string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB      string        `envconfig:"MONGO_DB" default:"impostorhunt"`
	RedisAddr    string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret    string        `envconfig:"JWT_SECRET" default:"super-secret-key-change-in-production"`
	AnswerWindow time.Duration `envconfig:"ANSWER_WINDOW" default:"90s"`
	// WaitingTTL bounds abandoned pre-start lobbies; StartedTTL re-arms
	// the expiry once the game begins. Finished games never expire.
	WaitingTTL time.Duration `envconfig:"WAITING_TTL" default:"15m"`
	StartedTTL time.Duration `envconfig:"STARTED_TTL" default:"30m"`
	// LobbyCacheTTL is how long the public lobby listing may be served
	// from Redis before being rebuilt from Mongo.
	LobbyCacheTTL   time.Duration `envconfig:"LOBBY_CACHE_TTL" default:"3s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}
