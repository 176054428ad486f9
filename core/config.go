package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		ShutdownTimeout           time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	GoogleConfig struct {
		CalendarBaseURL string
		CalendarID      string
		TimeZone        string
	}

	CertificateConfig struct {
		TemplateDir string
		FontsDir    string
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		SendgridAPIKey            string
		RollbarToken              string
		PasswordResetTimeoutDelta time.Duration

		Server      ServerConfig
		Database    DatabaseConfig
		Google      GoogleConfig
		Certificate CertificateConfig
	}
)

func (c ServerConfig) Address() string   { return net.JoinHostPort(c.Host, c.Port) }
func (c DatabaseConfig) Address() string { return net.JoinHostPort(c.Host, c.Port) }

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and ENV-prefixed environment variables.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	wd := Getwd()

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Guruji")
	v.SetDefault("secretKey", "k3u)a#q$8(d5mp_c&wz-75=0ys@4%vg+1f!ne^2j*hxr9lbt6o")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("shutdownTimeout", 5*time.Second)

	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "guruji")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTLS", true)

	v.SetDefault("googleCalendarBaseURL", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("googleCalendarID", "primary")
	v.SetDefault("googleTimeZone", "Asia/Kathmandu")

	v.SetDefault("certificateTemplateDir", filepath.Join(wd, "assets", "templates", "certificates"))
	v.SetDefault("certificateFontsDir", filepath.Join(wd, "assets", "fonts"))

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	testMode := false
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatal(fmt.Errorf("config.godotenv(%s): %v", dotEnvPath, err))
		}
	} else if !os.IsNotExist(err) {
		log.Fatal(fmt.Errorf("config.os.Stat(%s): %v", dotEnvPath, err))
	}
	v.AutomaticEnv()

	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         testMode,
		Env:              env,
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Address: v.GetString("defaultFromEmail")},

		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),

		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Port:                      v.GetString("serverPort"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			ShutdownTimeout:           v.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("databaseEngine"),
			Name:          v.GetString("databaseName"),
			User:          v.GetString("databaseUser"),
			Password:      v.GetString("databasePassword"),
			AdminUser:     v.GetString("databaseAdminUser"),
			AdminPassword: v.GetString("databaseAdminPassword"),
			Host:          v.GetString("databaseHost"),
			Port:          v.GetString("databasePort"),
			DisableTLS:    v.GetBool("databaseDisableTLS"),
		},
		Google: GoogleConfig{
			CalendarBaseURL: v.GetString("googleCalendarBaseURL"),
			CalendarID:      v.GetString("googleCalendarID"),
			TimeZone:        v.GetString("googleTimeZone"),
		},
		Certificate: CertificateConfig{
			TemplateDir: v.GetString("certificateTemplateDir"),
			FontsDir:    v.GetString("certificateFontsDir"),
		},
	}
}
