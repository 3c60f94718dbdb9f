package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

var (
	jwtPattern       = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	bearerPattern    = regexp.MustCompile(`(?i)^bearer\s+.+$`)
	basicAuthPattern = regexp.MustCompile(`(?i)^basic\s+.+$`)
)

// secretFieldNames are attribute and struct field names whose values never
// reach a log line.
var secretFieldNames = []string{
	"password", "secret", "token", "credential", "credentials",
	"apiKey", "apikey", "api_key",
	"accessToken", "access_token", "refreshToken", "refresh_token",
	"authorization", "auth", "bearer", "cookie", "session",
	"privateKey", "private_key", "secretKey", "secret_key",

	// Propagated in the correlation context between services.
	"auth-token", "auth_token", "authToken",
}

// contactFieldNames hold organization contact details.
var contactFieldNames = []string{
	"contactEmail", "contact_email",
	"contactPhone", "contact_phone",
}

// DefaultRedactOptions returns the masq options applied to every logger.
// Extend them through NewReplaceAttr:
//
//	replace := logging.NewReplaceAttr(masq.WithFieldName("licenseKey"))
func DefaultRedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretFieldNames)+len(contactFieldNames)+5)

	for _, name := range secretFieldNames {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range contactFieldNames {
		opts = append(opts, masq.WithFieldName(name))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(jwtPattern),
		masq.WithRegex(bearerPattern),
		masq.WithRegex(basicAuthPattern),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr function that redacts with the
// default options plus opts.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(DefaultRedactOptions(), opts...)...)
}
