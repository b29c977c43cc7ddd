package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL string
		Timeout time.Duration
		Retries int
	}

	PlayerConfig struct {
		UnlockPolicy string // sequential | module
		TokenFile    string
	}

	EmailConfig struct {
		DefaultFromEmail mail.Address
		SendgridApiKey   string
	}

	ServerConfig struct {
		Address            string
		SecretKey          string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		Seed               bool
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		API          APIConfig
		Player       PlayerConfig
		Server       ServerConfig
		Email        EmailConfig
	}
)

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and
// the environment (prefixed with MASOMO_, e.g. MASOMO_API_BASEURL).
func NewConfig() *Config {
	return loadConfig(viper.New(), os.Getenv("ENV"))
}

func loadConfig(v *viper.Viper, env string) *Config {
	env = strings.ToUpper(env)
	if env == "" {
		env = "DEV"
	}

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "develop")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("api.baseURL", "http://localhost:5000/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.retries", 2)
	v.SetDefault("player.unlockPolicy", "sequential")
	v.SetDefault("player.tokenFile", defaultTokenFile())
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.seed", true)
	v.SetDefault("email.defaultFromEmail", "no-reply@masomo.cd")
	v.SetDefault("email.sendgridApiKey", "")

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix("masomo")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	appName := v.GetString("appName")
	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      appName,
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.baseURL"), "/"),
			Timeout: v.GetDuration("api.timeout"),
			Retries: v.GetInt("api.retries"),
		},
		Player: PlayerConfig{
			UnlockPolicy: CleanString(v.GetString("player.unlockPolicy"), true /* lower */),
			TokenFile:    v.GetString("player.tokenFile"),
		},
		Server: ServerConfig{
			Address:            v.GetString("server.address"),
			SecretKey:          v.GetString("server.secretKey"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			Seed:               v.GetBool("server.seed"),
		},
		Email: EmailConfig{
			DefaultFromEmail: mail.Address{Name: appName, Address: v.GetString("email.defaultFromEmail")},
			SendgridApiKey:   v.GetString("email.sendgridApiKey"),
		},
	}
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "masomo", "token")
}
