package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

type Config struct {
	LogZapMode               string `mapstructure:"LOG_ZAP_MODE"`
	PrintConfigurationToLogs string `mapstructure:"PRINT_CONFIGURATION_TO_LOGS"`
	EthereumNodeUrl          string `mapstructure:"ETHEREUM_NODE_URL"`

	CollectionContract string   `mapstructure:"COLLECTION_CONTRACT"`
	CollectionName     string   `mapstructure:"COLLECTION_NAME"`
	CollectionAssetUrl string   `mapstructure:"COLLECTION_ASSET_URL"`
	ExplorerTxUrl      string   `mapstructure:"EXPLORER_TX_URL"`
	MarketplaceAddrs   []string `mapstructure:"MARKETPLACE_ADDRESSES"`
	NativeSymbol       string   `mapstructure:"NATIVE_SYMBOL"`

	ReconnectAuto        bool          `mapstructure:"RECONNECT_AUTO"`
	ReconnectDelay       time.Duration `mapstructure:"RECONNECT_DELAY"`
	ReconnectMaxAttempts int           `mapstructure:"RECONNECT_MAX_ATTEMPTS"`
	DedupCapacity        int           `mapstructure:"DEDUP_CAPACITY"`
	ExternalCallTimeout  time.Duration `mapstructure:"EXTERNAL_CALL_TIMEOUT"`

	TokenMetaSource string        `mapstructure:"TOKEN_META_SOURCE"`
	EtherscanApiUrl string        `mapstructure:"ETHERSCAN_API_URL"`
	EtherscanApiKey string        `mapstructure:"ETHERSCAN_API_KEY"`
	TokenMetaDbPath string        `mapstructure:"TOKEN_META_DB_PATH"`
	CoingeckoApiUrl string        `mapstructure:"COINGECKO_API_URL"`
	CoingeckoIds    string        `mapstructure:"COINGECKO_IDS"`
	PriceCacheRedis string        `mapstructure:"PRICE_CACHE_REDIS_ADDR"`
	PriceCacheTTL   time.Duration `mapstructure:"PRICE_CACHE_TTL"`

	NotifySinks              []string `mapstructure:"NOTIFY_SINKS"`
	NotifyWebhookUrl         string   `mapstructure:"NOTIFY_WEBHOOK_URL"`
	TwitterApiKey            string   `mapstructure:"TWITTER_API_KEY"`
	TwitterApiSecret         string   `mapstructure:"TWITTER_API_SECRET"`
	TwitterAccessToken       string   `mapstructure:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessTokenSecret string   `mapstructure:"TWITTER_ACCESS_TOKEN_SECRET"`
	KafkaBrokers             []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic               string   `mapstructure:"KAFKA_TOPIC"`
	AmqpUrl                  string   `mapstructure:"AMQP_URL"`
	AmqpExchange             string   `mapstructure:"AMQP_EXCHANGE"`
	AmqpRoutingKey           string   `mapstructure:"AMQP_ROUTING_KEY"`

	RPCPort              int    `mapstructure:"RPC_PORT"`
	OtelExporterEndpoint string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
}

var lock = &sync.Mutex{}
var config *Config

var Get = get

func get() Config {
	if config == nil {
		lock.Lock()
		defer lock.Unlock()
		if config == nil {
			c := loadConfig()
			config = &c
		}
	}
	return *config
}

func loadConfig() Config {
	viperAddConfigFile()
	viperAddDefaults()
	viperAddEnv()
	cfg := initializeCfg()
	debugConfig(cfg)
	return cfg
}

func viperAddConfigFile() {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("env")
}

func viperAddDefaults() {
	viper.SetDefault("EXPLORER_TX_URL", "https://etherscan.io/tx/")
	viper.SetDefault("NATIVE_SYMBOL", "ETH")
	viper.SetDefault("RECONNECT_AUTO", true)
	viper.SetDefault("RECONNECT_DELAY", 5*time.Second)
	viper.SetDefault("RECONNECT_MAX_ATTEMPTS", 5)
	viper.SetDefault("DEDUP_CAPACITY", 1024)
	viper.SetDefault("EXTERNAL_CALL_TIMEOUT", 15*time.Second)
	viper.SetDefault("TOKEN_META_SOURCE", "etherscan")
	viper.SetDefault("ETHERSCAN_API_URL", "https://api.etherscan.io/api")
	viper.SetDefault("COINGECKO_API_URL", "https://api.coingecko.com/api/v3")
	viper.SetDefault("PRICE_CACHE_TTL", 60*time.Second)
	viper.SetDefault("NOTIFY_SINKS", []string{"log"})
	viper.SetDefault("KAFKA_TOPIC", "salesbot-notifications")
	viper.SetDefault("AMQP_EXCHANGE", "salesbot")
	viper.SetDefault("AMQP_ROUTING_KEY", "sales.notification")
}

func viperAddEnv() {
	viper.AutomaticEnv()
	// This makes sure that all envs are binded even if they are not represented in config file (https://github.com/spf13/viper/issues/584)
	valueOfConfig := reflect.ValueOf(&Config{}).Elem()
	fieldsOfConfig := reflect.TypeOf(&Config{}).Elem()
	for i := 0; i < valueOfConfig.NumField(); i++ {
		field, _ := fieldsOfConfig.FieldByName(valueOfConfig.Type().Field(i).Name)
		mapStructureVal := field.Tag.Get("mapstructure")
		err := viper.BindEnv(mapStructureVal)
		if err != nil {
			panic(fmt.Sprintf("Error binding env val '%v': %v", mapStructureVal, err))
		}
	}
}

func initializeCfg() Config {
	var cfg Config
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		} else {
			panic(fmt.Sprintf("fatal error reading config file: %v", err))
		}
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		panic(fmt.Sprintf("error unmarshaling config: %v", err))
	}
	return cfg
}

func debugConfig(cfg Config) {
	if cfg.PrintConfigurationToLogs == "true" {
		b, err := json.Marshal(cfg.redacted())
		var result string
		if err != nil {
			result = "[FAILED TO CONVERT CONF TO STRING]"
		} else {
			result = string(b)
		}
		log.Printf("[APP CONFIGURATION]: %v\n", result)
	}
}

func (c Config) redacted() Config {
	for _, secret := range []*string{
		&c.EtherscanApiKey,
		&c.TwitterApiSecret,
		&c.TwitterAccessTokenSecret,
		&c.AmqpUrl,
	} {
		if *secret != "" {
			*secret = "***"
		}
	}
	return c
}

// Validate checks the settings the sales pipeline cannot start without.
func (c Config) Validate() error {
	var errs []error
	if c.EthereumNodeUrl == "" {
		errs = append(errs, errors.New("ETHEREUM_NODE_URL is not set"))
	}
	if !common.IsHexAddress(c.CollectionContract) {
		errs = append(errs, fmt.Errorf("COLLECTION_CONTRACT %q is not a valid address", c.CollectionContract))
	}
	if len(c.MarketplaceAddrs) == 0 {
		errs = append(errs, errors.New("MARKETPLACE_ADDRESSES is empty"))
	}
	for _, addr := range c.MarketplaceAddrs {
		if !common.IsHexAddress(addr) {
			errs = append(errs, fmt.Errorf("MARKETPLACE_ADDRESSES entry %q is not a valid address", addr))
		}
	}
	if c.ReconnectMaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("RECONNECT_MAX_ATTEMPTS must be >= 0, got %d", c.ReconnectMaxAttempts))
	}
	if c.DedupCapacity < 1 {
		errs = append(errs, fmt.Errorf("DEDUP_CAPACITY must be >= 1, got %d", c.DedupCapacity))
	}
	return errors.Join(errs...)
}
