// Command masomo is the learner and admin client of the LMS API.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/masomo/core"
	"github.com/trezcool/masomo/core/progress"
	"github.com/trezcool/masomo/services/lmsapi"
	logsvc "github.com/trezcool/masomo/services/logger"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "PLAYER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	tokens := &tokenFile{path: conf.Player.TokenFile}
	cli := commandLine{
		api:    lmsapi.New(conf.API, tokens),
		tokens: tokens,
		policy: progress.ParsePolicy(conf.Player.UnlockPolicy),
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
