// Package config defines the client library's configuration surface,
// loaded by embedders with envconfig the same way the teacher's
// config.Config is (spec.md §6 configuration table; SPEC_FULL.md §2).
package config

// Config holds everything an embedder supplies to connect and log in
// (spec.md §6, "Configuration (consumed from the embedder)").
type Config struct {
	UIN      uint32 `envconfig:"UIN" required:"true" description:"The ICQ account number to log in as."`
	Password string `envconfig:"PASSWORD" required:"true" description:"The ICQ account password."`

	AuthHost string `envconfig:"AUTH_HOST" required:"true" default:"login.icq.com" description:"The authorizer hostname the client connects to first."`
	AuthPort string `envconfig:"AUTH_PORT" required:"true" default:"5190" description:"The authorizer port."`

	// BOSPortOverride forces the BOS connection onto a fixed port instead
	// of the one carried in the auth server's redirect TLV -- useful
	// behind a NAT/firewall that only forwards one port.
	BOSPortOverride string `envconfig:"BOS_PORT_OVERRIDE" description:"If set, overrides the port from the auth redirect for the BOS connection."`

	AcceptInDirect bool `envconfig:"ACCEPT_IN_DIRECT" default:"true" description:"Whether to open a listening socket for incoming peer direct connections."`
	UseOutDirect   bool `envconfig:"USE_OUT_DIRECT" default:"true" description:"Whether to attempt outbound direct connections for eligible contacts."`

	DirectListenPort string `envconfig:"DIRECT_LISTEN_PORT" default:"0" description:"Port to bind the direct-connect listening socket to; 0 picks an ephemeral port."`

	TranslationMapFile string `envconfig:"TRANSLATION_MAP_FILE" description:"Optional path to a 256-byte charset translation table; identity transcoding is used if unset."`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info" description:"Set logging granularity. Possible values: 'debug', 'info', 'warn', 'error'."`
}
