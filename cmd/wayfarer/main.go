// Command wayfarer runs the level engine with a top-down debug view:
// terrain heights as shading, managed props as fading squares, and
// the transition curtain as an overlay. Number keys switch levels,
// backspace returns to the previous one.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mvelle/wayfarer/config"
)

func main() {
	configPath := flag.String("config", "", "path to wayfarer.toml (defaults apply when omitted)")
	startLevel := flag.String("level", "", "level id to load at boot (overrides config)")
	levelsDir := flag.String("levels", "", "load level documents from this directory instead of the embedded set")
	watch := flag.Bool("watch", false, "hot-reload the active level when its document changes (needs -levels)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *startLevel != "" {
		cfg.Levels.Start = *startLevel
	}
	if *levelsDir != "" {
		cfg.Levels.Dir = *levelsDir
	}
	if *watch {
		cfg.Levels.Watch = true
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal("boot failed", zap.Error(err))
	}
	defer game.Close()

	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("wayfarer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
