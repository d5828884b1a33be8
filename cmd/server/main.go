package main

import (
	"github.com/rs/zerolog/log"
	"github.com/simfon/fate-pbc-rpg/internal/config"
	"github.com/simfon/fate-pbc-rpg/internal/db"
	clog "github.com/simfon/fate-pbc-rpg/internal/log"
	"github.com/simfon/fate-pbc-rpg/internal/server"
)

func main() {
	// main 负责加载配置、初始化日志、连接数据库并启动 Gin 服务。
	cfg := config.Load()
	clog.Init(cfg.Env)

	gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	if err := db.Seed(gdb); err != nil {
		log.Fatal().Err(err).Msg("db seed")
	}

	r := server.SetupRouter(cfg, gdb)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
