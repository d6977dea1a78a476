package config

type Config struct {
	Environment Environment
	Log         Log

	API     API     `envPrefix:"API_"`
	State   State   `envPrefix:"STATE_"`
	MockAPI MockAPI `envPrefix:"MOCKAPI_"`
}

type API struct {
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:8080/api"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"30"`
}

type State struct {
	DatabasePath string `env:"DATABASE_PATH" envDefault:"storefront.db"`
	CatalogPath  string `env:"CATALOG_PATH" envDefault:"catalog.json"`
}

type MockAPI struct {
	Host         string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port         string `env:"HTTP_PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"mockapi.db"`
	JWTSecret    string `env:"JWT_SECRET" envDefault:"dev-secret"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}
