package config

type ServiceConfig struct {
	Name                string `yaml:"name" validate:"required"`
	Environment         string `yaml:"environment" validate:"required,oneof=development staging production"`
	Version             string `yaml:"version"`
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// Channel notifications are published to.
	NotificationChannel string `yaml:"notification_channel"`
}
