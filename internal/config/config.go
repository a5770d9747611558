package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr     = ":5000"
	DefaultUploadDir      = "./uploads"
	DefaultTokenExpiresIn = 1 * time.Hour
)

type MySQLConfig struct {
	Dsn             string `mapstructure:"dsn"`
	TablePrefix     string `mapstructure:"tablePrefix"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	TLS      bool   `mapstructure:"tls"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	CAFile   string `mapstructure:"caFile"`
}

type MailConfig struct {
	Backend string     `mapstructure:"backend"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type S3Config struct {
	Region      string `mapstructure:"region"`
	Bucket      string `mapstructure:"bucket"`
	AccessKeyID string `mapstructure:"accessKeyID"`
	SecretKey   string `mapstructure:"secretKey"`
	EndpointURL string `mapstructure:"endpointURL"`
	KeyPrefix   string `mapstructure:"keyPrefix"`
}

type UploadsConfig struct {
	Backend string   `mapstructure:"backend"` // "local" (default) or "s3"
	Dir     string   `mapstructure:"dir"`
	S3      S3Config `mapstructure:"s3"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expiresIn"`
}

type Config struct {
	Debug        bool          `mapstructure:"debug"`
	BaseURL      string        `mapstructure:"baseURL"`
	ListenAddr   string        `mapstructure:"listenAddr"`
	AllowOrigins []string      `mapstructure:"allowOrigins"`
	MySQL        MySQLConfig   `mapstructure:"mysql"`
	Redis        RedisConfig   `mapstructure:"redis"`
	Mail         MailConfig    `mapstructure:"mail"`
	Uploads      UploadsConfig `mapstructure:"uploads"`
	JWT          JWTConfig     `mapstructure:"jwt"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Uploads.Backend == "" {
		c.Uploads.Backend = "local"
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = DefaultUploadDir
	}
	if c.JWT.ExpiresIn == 0 {
		c.JWT.ExpiresIn = DefaultTokenExpiresIn
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
