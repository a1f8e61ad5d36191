package core

import (
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
	serverConfig struct {
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		StudentTokenDelta         time.Duration
		RateLimit                 float64 // requests per second per client
		RateLimitBurst            int
	}

	databaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	storageConfig struct {
		Endpoint  string
		AccessKey string
		SecretKey string
		Bucket    string
		UseSSL    bool
		PublicURL string
	}

	redisConfig struct {
		Addr     string
		Password string
	}

	kafkaConfig struct {
		Brokers []string
		Topic   string
	}

	Config struct {
		Debug     bool
		TestMode  bool
		AppName   string
		SecretKey string
		Build     string
		Env       string
		WorkDir   string

		Server   serverConfig
		Database databaseConfig
		Storage  storageConfig
		Redis    redisConfig
		Kafka    kafkaConfig

		SendgridApiKey    string
		RollbarToken      string
		FrontendBaseURL   string
		DefaultFromEmail  string
		AdminEmail        string
		AdminPasswordHash string
	}
)

func (db databaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// DefaultFromAddress parses DefaultFromEmail, falling back to a bare address when it is malformed.
func (c *Config) DefaultFromAddress() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
}

func (c *Config) AdminAddress() mail.Address {
	return mail.Address{Name: c.AppName + " Admin", Address: c.AdminEmail}
}

// NewConfig reads the configuration from the environment.
// ENV selects the environment (DEV by default) and the prefix of every variable, eg. PROD_DB_HOST.
// config/.env.<env> is loaded first if it exists.
func NewConfig() *Config {
	v := viper.New()

	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("test_mode", false)
	v.SetDefault("app_name", "Submitly")
	v.SetDefault("secret_key", "k3x9-w@lq)8nb$+2v=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2sub")
	v.SetDefault("build", "develop")
	v.SetDefault("default_from_email", "Submitly <notifications@submitly.com>")
	v.SetDefault("admin_email", "admin@submitly.com")
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("frontend_base_url", "http://localhost:3000")
	v.SetDefault("sendgrid_api_key", "")
	v.SetDefault("rollbar_token", "")

	v.SetDefault("server_host", "0.0.0.0:8000")
	v.SetDefault("server_debug_host", "0.0.0.0:4000")
	v.SetDefault("server_shutdown_timeout", 5*time.Second)
	v.SetDefault("jwt_expiration_delta", 24*time.Hour)
	v.SetDefault("jwt_refresh_expiration_delta", 7*24*time.Hour)
	v.SetDefault("student_token_delta", 72*time.Hour)
	v.SetDefault("rate_limit", 3.0)
	v.SetDefault("rate_limit_burst", 3)

	v.SetDefault("db_engine", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "submitly")
	v.SetDefault("db_password", "submitly")
	v.SetDefault("db_admin_user", "postgres")
	v.SetDefault("db_admin_password", "postgres")
	v.SetDefault("db_name", "submitly")
	v.SetDefault("db_disable_tls", true)

	v.SetDefault("minio_endpoint", "")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_bucket", "submitly-uploads")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_public_url", "")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")

	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "submitly.submissions")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)

	workDir := rootDir()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:             v.GetBool("debug"),
		TestMode:          v.GetBool("test_mode"),
		AppName:           v.GetString("app_name"),
		SecretKey:         v.GetString("secret_key"),
		Build:             v.GetString("build"),
		Env:               env,
		WorkDir:           workDir,
		SendgridApiKey:    v.GetString("sendgrid_api_key"),
		RollbarToken:      v.GetString("rollbar_token"),
		FrontendBaseURL:   strings.TrimRight(v.GetString("frontend_base_url"), "/"),
		DefaultFromEmail:  v.GetString("default_from_email"),
		AdminEmail:        v.GetString("admin_email"),
		AdminPasswordHash: v.GetString("admin_password_hash"),
	}

	conf.Server.Host = v.GetString("server_host")
	conf.Server.DebugHost = v.GetString("server_debug_host")
	conf.Server.ShutdownTimeout = v.GetDuration("server_shutdown_timeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwt_expiration_delta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("jwt_refresh_expiration_delta")
	conf.Server.StudentTokenDelta = v.GetDuration("student_token_delta")
	conf.Server.RateLimit = v.GetFloat64("rate_limit")
	conf.Server.RateLimitBurst = v.GetInt("rate_limit_burst")

	conf.Database.Engine = v.GetString("db_engine")
	conf.Database.Host = v.GetString("db_host")
	conf.Database.Port = v.GetString("db_port")
	conf.Database.User = v.GetString("db_user")
	conf.Database.Password = v.GetString("db_password")
	conf.Database.AdminUser = v.GetString("db_admin_user")
	conf.Database.AdminPassword = v.GetString("db_admin_password")
	conf.Database.Name = v.GetString("db_name")
	conf.Database.DisableTLS = v.GetBool("db_disable_tls")

	conf.Storage.Endpoint = v.GetString("minio_endpoint")
	conf.Storage.AccessKey = v.GetString("minio_access_key")
	conf.Storage.SecretKey = v.GetString("minio_secret_key")
	conf.Storage.Bucket = v.GetString("minio_bucket")
	conf.Storage.UseSSL = v.GetBool("minio_use_ssl")
	conf.Storage.PublicURL = strings.TrimRight(v.GetString("minio_public_url"), "/")

	conf.Redis.Addr = v.GetString("redis_addr")
	conf.Redis.Password = v.GetString("redis_password")

	conf.Kafka.Brokers = splitList(v.GetString("kafka_brokers"))
	conf.Kafka.Topic = v.GetString("kafka_topic")

	return conf
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// rootDir walks up from the working directory to the module root (the dir holding go.mod).
// go test runs from the package dir, so config/ would not be found otherwise.
// Falls back to the working directory for deployed binaries.
func rootDir() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
