// Command devtoken prints a signed bearer token for a subject, for use
// against a server started with -auth.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/flagx"
	"github.com/dmitrijs2005/gophjournal/internal/server/auth"
	"github.com/dmitrijs2005/gophjournal/internal/server/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	var (
		subject string
		ttl     time.Duration
	)

	fs := flag.NewFlagSet("devtoken", flag.ExitOnError)
	fs.StringVar(&subject, "subject", "", "token subject")
	fs.DurationVar(&ttl, "ttl", cfg.AccessTokenValidityDuration, "token validity")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"subject", "ttl"}))

	token, err := auth.GenerateToken(subject, []byte(cfg.SecretKey), ttl)
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Println(token)
}
