package main

import (
	"flag"
	"os"

	"github.com/maisonhq/maison/internal/platform/config"
	"github.com/maisonhq/maison/internal/tools/tokenmint"
)

func main() {
	cfg, err := tokenmint.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := tokenmint.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("mint token: %v", err)
	}
}
