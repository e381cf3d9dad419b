package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Infra.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q, want default", cfg.Infra.Redis.Addr)
	}
	if cfg.Infra.Kafka.ConfirmationTopic != "promo-confirmations" {
		t.Errorf("ConfirmationTopic = %q, want default", cfg.Infra.Kafka.ConfirmationTopic)
	}
	if cfg.Promo.EntryGuard != "redis" {
		t.Errorf("EntryGuard = %q, want redis", cfg.Promo.EntryGuard)
	}
}

func TestLoadConfigFromYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
infra:
  redis:
    addr: "redis.prod:6379"
  kafka:
    brokers: ["kafka-1:9092", "kafka-2:9092"]
promo:
  entry_guard: "zookeeper"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Infra.Redis.Addr != "redis.prod:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Infra.Redis.Addr)
	}
	if len(cfg.Infra.Kafka.Brokers) != 2 {
		t.Errorf("Kafka.Brokers = %v", cfg.Infra.Kafka.Brokers)
	}
	if cfg.Promo.EntryGuard != "zookeeper" {
		t.Errorf("EntryGuard = %q", cfg.Promo.EntryGuard)
	}
	// 文件中没写的字段保持默认值
	if cfg.Infra.Nacos.Group != "DEFAULT_GROUP" {
		t.Errorf("Nacos.Group = %q, want default", cfg.Infra.Nacos.Group)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("MYSQL_DSN", "user:pw@tcp(db:3306)/promos")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092,k3:9092")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Infra.Mysql.DSN != "user:pw@tcp(db:3306)/promos" {
		t.Errorf("Mysql.DSN = %q", cfg.Infra.Mysql.DSN)
	}
	if len(cfg.Infra.Kafka.Brokers) != 3 {
		t.Errorf("Kafka.Brokers = %v", cfg.Infra.Kafka.Brokers)
	}
}

func TestLoadConfigRejectsInvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Error("loadConfig() should reject invalid yaml")
	}
}
