// internal/pkg/config/config.go
package config

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构。
// 配置来源优先级：环境变量 > yaml 文件 > 默认值。
type Config struct {
	Infra struct {
		Mysql struct {
			Addr     string `yaml:"addr"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addr string `yaml:"addr"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Social struct {
		// Graph API 的访问配置。Provider 为 "recording" 时走内存实现，
		// 用于本地联调和测试（见 autopost/infrastructure）。
		Provider    string `yaml:"provider"`
		GraphAPIURL string `yaml:"graphApiUrl"`
		AccessToken string `yaml:"accessToken"`
	} `yaml:"social"`

	Email struct {
		Provider string `yaml:"provider"`
		APIURL   string `yaml:"apiUrl"`
		APIKey   string `yaml:"apiKey"`
		From     string `yaml:"from"`
		// Recipients 是运营告警邮件的收件人列表
		Recipients []string `yaml:"recipients"`
	} `yaml:"email"`

	Orchestrator struct {
		// TickIntervalSeconds 控制后台 tick 轮询周期
		TickIntervalSeconds int `yaml:"tickIntervalSeconds"`
		RetentionDays       int `yaml:"retentionDays"`
		// 跨实例互斥开关。单实例部署时关闭，依赖进程内的原子标志即可。
		DistributedLock bool `yaml:"distributedLock"`
	} `yaml:"orchestrator"`
}

var (
	current Config
	once    sync.Once
)

// Load 从指定路径加载 yaml 配置并应用环境变量覆盖。
// 文件不存在不算错误，此时全部使用默认值 + 环境变量。
func Load(path string) (*Config, error) {
	var cfg Config
	cfg.defaults()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return &cfg, nil
}

// Init 加载全局配置，供 bootstrap 使用。重复调用只生效一次。
func Init() {
	once.Do(func() {
		path := getEnv("CONFIG_PATH", "config.yaml")
		cfg, err := Load(path)
		if err != nil {
			panic("config: failed to load " + path + ": " + err.Error())
		}
		current = *cfg
	})
}

// GetCurrent 返回全局配置的副本。
func GetCurrent() Config {
	Init()
	return current
}

func (c *Config) defaults() {
	c.Infra.Mysql.Addr = "localhost:3306"
	c.Infra.Mysql.User = "root"
	c.Infra.Mysql.Database = "agrimart"
	c.Infra.Redis.Addr = "localhost:6379"
	c.Infra.Kafka.Brokers = []string{"localhost:9092"}
	c.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	c.Infra.Nacos.ServerAddrs = "localhost:8848"
	c.Infra.Nacos.Group = "DEFAULT_GROUP"
	c.Social.Provider = "graph"
	c.Social.GraphAPIURL = "https://graph.facebook.com/v19.0"
	c.Email.Provider = "http"
	c.Orchestrator.TickIntervalSeconds = 60
	c.Orchestrator.RetentionDays = 30
}

func (c *Config) applyEnv() {
	setIfEnv(&c.Infra.Mysql.Addr, "MYSQL_ADDR")
	setIfEnv(&c.Infra.Mysql.User, "MYSQL_USER")
	setIfEnv(&c.Infra.Mysql.Password, "MYSQL_PASSWORD")
	setIfEnv(&c.Infra.Mysql.Database, "MYSQL_DATABASE")
	setIfEnv(&c.Infra.Redis.Addr, "REDIS_ADDR")
	setIfEnv(&c.Infra.Jaeger.Endpoint, "JAEGER_ENDPOINT")
	setIfEnv(&c.Infra.Nacos.ServerAddrs, "NACOS_SERVER_ADDRS")
	setIfEnv(&c.Infra.Nacos.Namespace, "NACOS_NAMESPACE")
	setIfEnv(&c.Infra.Nacos.Group, "NACOS_GROUP")
	setIfEnv(&c.Social.Provider, "SOCIAL_PROVIDER")
	setIfEnv(&c.Social.AccessToken, "GRAPH_ACCESS_TOKEN")
	setIfEnv(&c.Email.APIKey, "EMAIL_API_KEY")
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("ZK_SERVERS"); ok {
		c.Infra.Zookeeper.Servers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("EMAIL_RECIPIENTS"); ok {
		c.Email.Recipients = strings.Split(v, ",")
	}
}

func setIfEnv(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*target = v
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
