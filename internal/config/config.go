package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Database   Database   `yaml:"database"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Club       Club       `yaml:"club"`
	Twilio     Twilio     `yaml:"twilio"`
	Resend     Resend     `yaml:"resend"`
	Admin      Admin      `yaml:"admin"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"clubsched"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"clubsched"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Club carries the club-wide scheduling settings. The timezone is the single
// configured IANA zone every civil event date/time is interpreted in.
type Club struct {
	Timezone         string        `yaml:"timezone" env:"CLUB_TIMEZONE" env-default:"America/Chicago"`
	CalendarDomain   string        `yaml:"calendar_domain" env:"CLUB_CALENDAR_DOMAIN" env-default:"dinners.example.org"`
	DefaultEventTime string        `yaml:"default_event_time" env:"CLUB_DEFAULT_EVENT_TIME" env-default:"18:00"`
	ReminderOffsets  []string      `yaml:"reminder_offsets" env:"CLUB_REMINDER_OFFSETS" env-separator:"," env-default:"24h,2h"`
	ReminderWindow   time.Duration `yaml:"reminder_window" env:"CLUB_REMINDER_WINDOW" env-default:"15m"`
	SweepSchedule    string        `yaml:"sweep_schedule" env:"CLUB_SWEEP_SCHEDULE" env-default:"*/5 * * * *"`
	SmsRateLimit     int           `yaml:"sms_rate_limit" env:"CLUB_SMS_RATE_LIMIT" env-default:"10"`
	SmsRateWindow    time.Duration `yaml:"sms_rate_window" env:"CLUB_SMS_RATE_WINDOW" env-default:"1m"`
}

type Twilio struct {
	AccountSID string `yaml:"account_sid" env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `yaml:"auth_token" env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `yaml:"from_number" env:"TWILIO_FROM_NUMBER"`
}

type Resend struct {
	APIKey        string `yaml:"api_key" env:"RESEND_API_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"RESEND_WEBHOOK_SECRET"`
	FromAddress   string `yaml:"from_address" env:"RESEND_FROM_ADDRESS" env-default:"dinners@dinners.example.org"`
}

type Admin struct {
	Token string `yaml:"token" env:"ADMIN_API_TOKEN"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
