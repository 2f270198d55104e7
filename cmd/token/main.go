// Command token issues operator JWTs and bcrypt password hashes for the
// lottery API.
//
//	token -sub ops-1 -ttl 2h          # prints a signed OPERATOR token
//	token -hash 'correct horse'       # prints OPERATOR_PASSWORD_HASH
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/ArowuTest/lucky-lottery/internal/auth"
	"github.com/ArowuTest/lucky-lottery/internal/config"
	"github.com/ArowuTest/lucky-lottery/internal/models"
)

func main() {
	sub := flag.String("sub", "operator", "token subject")
	role := flag.String("role", string(models.RoleOperator), "role claim")
	ttl := flag.Duration("ttl", auth.DefaultTTL, "token lifetime")
	hash := flag.String("hash", "", "print the bcrypt hash of this password instead of a token")
	flag.Parse()

	if *hash != "" {
		out, err := bcrypt.GenerateFromPassword([]byte(*hash), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithError(err).Fatal("hash password")
		}
		fmt.Println(string(out))
		return
	}

	appCfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	auth.Init(appCfg.JWTSecret)

	tok, err := auth.GenerateJWT(*sub, *role, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("sign token")
	}
	fmt.Fprintln(os.Stdout, tok)
	logrus.WithFields(logrus.Fields{"sub": *sub, "role": *role, "expires": time.Now().Add(*ttl).Format(time.RFC3339)}).
		Info("token issued")
}
