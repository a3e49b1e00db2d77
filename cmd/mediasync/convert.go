package main

import (
	"mediasync/internal/config"
	"mediasync/internal/convert"
)

func convertFromConfig(cfg *config.Config) *convert.Converter {
	return convert.New(cfg.FFmpeg.Path, cfg.FFmpeg.ProbePath)
}
