package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	PostgresURL string `envconfig:"POSTGRES_URL"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`

	NotifierURL string `envconfig:"NOTIFIER_URL"`

	PaymentProviderURL string `envconfig:"PAYMENT_PROVIDER_URL"`
	PaymentAPIKey      string `envconfig:"PAYMENT_API_KEY"`
	CheckoutSuccessURL string `envconfig:"CHECKOUT_SUCCESS_URL" default:"http://localhost:8080/checkout/success"`
	CheckoutCancelURL  string `envconfig:"CHECKOUT_CANCEL_URL" default:"http://localhost:8080/checkout"`

	MailProvider string `envconfig:"MAIL_PROVIDER" default:"resend"`
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	SMTPAddr     string `envconfig:"SMTP_ADDR" default:"smtp.gmail.com:587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`

	BrandName   string `envconfig:"BRAND_NAME" default:"Cozy Bakes"`
	FromAddress string `envconfig:"FROM_ADDRESS" default:"Cozy Bakes <orders@cozybakes.com>"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
