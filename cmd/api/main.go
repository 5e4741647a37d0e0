package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"discussify/internal/pkg"
	"discussify/internal/repository/mysql"
	"discussify/internal/repository/redis"
	"discussify/internal/router"
	"discussify/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal().Err(err).Msg("could not read settings")
	}

	pkg.ConfigureJWT(
		viper.GetString("security.access_secret"),
		viper.GetString("security.refresh_secret"),
	)

	if err := mysql.InitDB(viper.GetString("database.dsn")); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := mysql.AutoMigrate(mysql.DB); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	if err := redis.Init(
		viper.GetString("redis.addr"),
		viper.GetString("redis.password"),
		viper.GetInt("redis.db"),
	); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redis.Close()

	var publisher service.Publisher
	if brokers := viper.GetStringSlice("kafka.brokers"); len(brokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: brokers,
			Topic:   viper.GetString("kafka.topic"),
		})
		defer producer.Close()
		publisher = producer
		log.Info().Strs("brokers", brokers).Msg("realtime channel enabled")
	} else {
		log.Warn().Msg("no kafka brokers configured, realtime channel disabled")
	}

	var mailer service.Mailer
	smtp := pkg.SMTPConfig{
		Host:     viper.GetString("smtp.host"),
		Port:     viper.GetInt("smtp.port"),
		Username: viper.GetString("smtp.username"),
		Password: viper.GetString("smtp.password"),
		From:     viper.GetString("smtp.from"),
	}
	if smtp.Configured() {
		mailer = smtp
	} else {
		log.Warn().Msg("no smtp host configured, otp mail disabled")
	}

	uploadDir := viper.GetString("server.upload_dir")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", uploadDir).Msg("could not create upload dir")
	}

	r := router.New(router.Deps{
		DB:        mysql.DB,
		Publisher: publisher,
		Mailer:    mailer,
		UploadDir: uploadDir,
	})

	bind := viper.GetString("server.bind")
	if bind == "" {
		bind = ":8080"
	}
	log.Info().Str("bind", bind).Msg("listening")
	if err := r.Run(bind); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
