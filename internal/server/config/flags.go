package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/mesadesk/ticketdesk/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-i string   JWT issuer
//	-o string   JWT audience
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-m string   SMTP host
//	-n int      SMTP port
//	-j string   SMTP username
//	-k string   SMTP password
//	-f string   notification sender address
//	-q string   notification recipients, comma-separated
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Duration flags are accepted as integers in minutes and converted to
// time.Duration values. The function first filters os.Args to only the flags
// it recognizes using flagx.FilterArgs, avoiding collisions with other
// components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-i", "-o", "-t", "-r",
		"-m", "-n", "-j", "-k", "-f", "-q",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.JwtIssuer, "i", config.JwtIssuer, "JWT issuer")
	fs.StringVar(&config.JwtAudience, "o", config.JwtAudience, "JWT audience")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "n", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUsername, "j", config.SMTPUsername, "SMTP username")
	fs.StringVar(&config.SMTPPassword, "k", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPSender, "f", config.SMTPSender, "notification sender address")
	recipients := fs.String("q", strings.Join(config.NotifyRecipients, ","), "notification recipients (comma-separated)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute

	config.NotifyRecipients = config.NotifyRecipients[:0]
	for _, r := range strings.Split(*recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			config.NotifyRecipients = append(config.NotifyRecipients, r)
		}
	}
}
