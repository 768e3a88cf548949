package config

func loadDevelopmentConfig(cfg *Config) {
	cfg.DatabaseFilePath = "tmp/hondana.db"
	cfg.DatabaseDebug = true
	cfg.JWTSecret = "development-secret"
	cfg.ThumbnailDir = "tmp/thumbnails"
}

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.JWTSecret = "test-secret"
	cfg.ThumbnailDir = "tmp/test-thumbnails"
}

func loadProductionConfig(cfg *Config) {
	cfg.DatabaseFilePath = "/data/hondana.db"
	cfg.ThumbnailDir = "/data/thumbnails"
}
