package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/colibie/events-app-api/internal/utils"
)

const (
	kafkaHostFlag   = "kafka-host"
	kafkaPortFlag   = "kafka-port"
	mongoDBURIFlag  = "mongodb-uri"
	developmentFlag = "development"
	httpPortFlag    = "port"
	jwtSecretFlag   = "jwt-secret"
)

type Config struct {
	Kafka   KafkaConfig
	MongoDB MongoDBConfig

	Development bool

	HTTPPort  int
	JWTSecret string
}

type KafkaConfig struct {
	Host string
	Port int
}

type MongoDBConfig struct {
	URI string
}

func LoadGlobalConfig() Config {
	viper.SetDefault(kafkaHostFlag, "localhost")
	viper.SetDefault(kafkaPortFlag, 9092)
	viper.SetDefault(mongoDBURIFlag, "mongodb://localhost:27017")
	viper.SetDefault(developmentFlag, true)
	viper.SetDefault(httpPortFlag, 8080)
	viper.SetDefault(jwtSecretFlag, "")

	pflag.String(kafkaHostFlag, viper.GetString(kafkaHostFlag), "Kafka host")
	pflag.Int32(kafkaPortFlag, viper.GetInt32(kafkaPortFlag), "Kafka port")
	pflag.String(mongoDBURIFlag, viper.GetString(mongoDBURIFlag), "MongoDB URI")
	pflag.Bool(developmentFlag, viper.GetBool(developmentFlag), "Development mode")
	pflag.Int32(httpPortFlag, viper.GetInt32(httpPortFlag), "HTTP port")
	pflag.String(jwtSecretFlag, viper.GetString(jwtSecretFlag), "JWT signing secret")
	pflag.Parse()

	// Bind the viper flags to environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	utils.Must(viper.BindEnv(kafkaHostFlag))
	utils.Must(viper.BindEnv(kafkaPortFlag))
	utils.Must(viper.BindEnv(mongoDBURIFlag))
	utils.Must(viper.BindEnv(developmentFlag))
	utils.Must(viper.BindEnv(httpPortFlag))
	utils.Must(viper.BindEnv(jwtSecretFlag))

	return Config{
		Kafka: KafkaConfig{
			Host: viper.GetString(kafkaHostFlag),
			Port: int(viper.GetInt32(kafkaPortFlag)),
		},
		MongoDB: MongoDBConfig{
			URI: viper.GetString(mongoDBURIFlag),
		},
		Development: viper.GetBool(developmentFlag),
		HTTPPort:    int(viper.GetInt32(httpPortFlag)),
		JWTSecret:   viper.GetString(jwtSecretFlag),
	}
}
