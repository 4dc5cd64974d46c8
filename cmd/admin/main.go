// Command codepulse-admin changes role membership directly in the
// credential store. It reads the same configuration as the server.
//
//	codepulse-admin grant -email alice@x.com -role Writer
//	codepulse-admin revoke -email alice@x.com -role Writer
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/codepulse/internal/flagx"
	"github.com/dmitrijs2005/codepulse/internal/logging"
	"github.com/dmitrijs2005/codepulse/internal/server/admin"
	"github.com/dmitrijs2005/codepulse/internal/server/config"
	"github.com/dmitrijs2005/codepulse/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/codepulse/internal/server/services"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	// role changes never mint tokens, so no issuer is needed
	users := services.NewUserService(db, repomanager.NewPostgresRepositoryManager(), cfg, nil, logger)

	if err := admin.Run(ctx, users, commandArgs(os.Args[1:]), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		db.Close()
		os.Exit(2)
	}
}

// commandArgs drops the config flags LoadConfig already consumed so only the
// subcommand and its own flags remain.
func commandArgs(args []string) []string {
	consumed := flagx.FilterArgs(args, []string{"-c", "-config", "-env-file", "-a", "-g", "-d", "-s", "-i", "-aud", "-t", "-u", "-p", "-b", "-r", "-e", "-l"})
	skip := make(map[int]bool)
	j := 0
	for i := 0; i < len(args) && j < len(consumed); i++ {
		if args[i] == consumed[j] {
			skip[i] = true
			j++
		}
	}

	out := make([]string, 0, len(args))
	for i, a := range args {
		if !skip[i] {
			out = append(out, a)
		}
	}
	return out
}
