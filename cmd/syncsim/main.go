package main

import (
	"os"

	"github.com/pingcap/log"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("syncsim failed", zap.Error(err))
		os.Exit(1)
	}
}
