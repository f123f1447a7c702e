package config

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Driver      string
		Dsn         string
		Automigrate bool
	}
	SeedDemoData bool

	// SimulatedDelayMs makes every ledger operation pause, which is handy
	// when exercising loading states in a client. Zero disables it.
	SimulatedDelayMs int

	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
	RedisServer  string
	KafkaServers string
}
