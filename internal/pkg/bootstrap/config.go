// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 是整个服务的静态配置。
// 启动时从 YAML 文件加载一次，之后只读；不允许任何 import 期的全局副作用。
type Config struct {
	Infra InfraConfig `yaml:"infra"`
	Promo PromoConfig `yaml:"promo"`
}

type InfraConfig struct {
	Jaeger struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"jaeger"`

	Mysql struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers           []string `yaml:"brokers"`
		ConfirmationTopic string   `yaml:"confirmation_topic"`
		ConsumerGroup     string   `yaml:"consumer_group"`
	} `yaml:"kafka"`

	Zookeeper struct {
		Servers []string `yaml:"servers"`
	} `yaml:"zookeeper"`

	Nacos struct {
		ServerAddrs string `yaml:"server_addrs"`
		Namespace   string `yaml:"namespace"`
		Group       string `yaml:"group"`
	} `yaml:"nacos"`

	SMTP struct {
		Host        string `yaml:"host"`
		Port        int    `yaml:"port"`
		Username    string `yaml:"username"`
		Password    string `yaml:"password"`
		DefaultFrom string `yaml:"default_from"`
	} `yaml:"smtp"`
}

// PromoConfig 是业务侧的配置项。
type PromoConfig struct {
	// EntryGuard 选择重复报名防护的实现: "redis" 或 "zookeeper"。
	EntryGuard string `yaml:"entry_guard"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置并初始化全局组件，每个进程启动时调用一次。
// 配置文件路径来自 PROMOS_CONFIG 环境变量，缺省 config.yaml。
func Init() {
	configOnce.Do(func() {
		path := getEnv("PROMOS_CONFIG", "config.yaml")
		cfg, err := loadConfig(path)
		if err != nil {
			panic(fmt.Sprintf("FATAL: failed to load config from %s: %v", path, err))
		}
		currentConfig = cfg
	})
}

// GetCurrentConfig 返回已加载的配置。必须先调用 Init。
func GetCurrentConfig() Config {
	return currentConfig
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	applyDefaults(&cfg)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 没有配置文件时允许纯环境变量/默认值启动，方便本地开发
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid yaml: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Mysql.DSN = "root:root@tcp(localhost:3306)/promos?charset=utf8mb4&parseTime=True&loc=UTC"
	cfg.Infra.Redis.Addr = "localhost:6379"
	cfg.Infra.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Infra.Kafka.ConfirmationTopic = "promo-confirmations"
	cfg.Infra.Kafka.ConsumerGroup = "notification-group"
	cfg.Infra.Zookeeper.Servers = []string{"localhost:2181"}
	cfg.Infra.Nacos.ServerAddrs = "localhost:8848"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	cfg.Infra.SMTP.Host = "localhost"
	cfg.Infra.SMTP.Port = 25
	cfg.Infra.SMTP.DefaultFrom = "no-reply@localhost"
	cfg.Promo.EntryGuard = "redis"
}

// applyEnvOverrides 允许用环境变量覆盖关键的基础设施地址，
// 便于容器化部署时不重打配置文件。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Infra.Mysql.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Infra.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Infra.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Infra.Nacos.Group = v
	}
}

// getEnv 是一个内部辅助函数，从环境变量中读取配置。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
