// Package jwt provides JWT verification options for the assistant service.
//
// The assistant does not mint tokens. It verifies tokens issued by the main
// platform and extracts the caller's user id claim.
package jwt

import (
	"fmt"
	"os"

	"github.com/kart-io/teamsync/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

const (
	// DefaultSigningMethod is the default JWT signing algorithm.
	DefaultSigningMethod = "HS256"

	// MinKeyLength is the minimum required key length for HMAC keys.
	MinKeyLength = 32
)

// SupportedSigningMethods contains the accepted JWT signing algorithms.
var SupportedSigningMethods = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Options contains JWT verification configuration.
type Options struct {
	// DisableAuth disables JWT verification. Intended for local development
	// only; requests then authenticate via the X-User-ID header.
	DisableAuth bool `json:"disable-auth" mapstructure:"disable-auth"`

	// Key is the shared HMAC secret used to verify tokens.
	Key string `json:"-" mapstructure:"key"`

	// SigningMethod is the expected signing algorithm.
	SigningMethod string `json:"signing-method" mapstructure:"signing-method"`

	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string `json:"issuer" mapstructure:"issuer"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		SigningMethod: DefaultSigningMethod,
	}
}

// AddFlags adds flags for JWT options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.DisableAuth, options.Join(prefixes...)+"jwt.disable-auth", o.DisableAuth, "Disable JWT authentication (development only).")
	fs.StringVar(&o.Key, options.Join(prefixes...)+"jwt.key", o.Key, "JWT signing key (DEPRECATED: use JWT_KEY env var instead).")
	fs.StringVar(&o.SigningMethod, options.Join(prefixes...)+"jwt.signing-method", o.SigningMethod, "JWT signing method (HS256|HS384|HS512).")
	fs.StringVar(&o.Issuer, options.Join(prefixes...)+"jwt.issuer", o.Issuer, "Expected JWT issuer (optional).")
}

// Validate validates the JWT options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error

	if o.DisableAuth {
		return errs
	}

	if len(o.Key) < MinKeyLength {
		errs = append(errs, fmt.Errorf("jwt.key must be at least %d characters", MinKeyLength))
	}
	if !SupportedSigningMethods[o.SigningMethod] {
		errs = append(errs, fmt.Errorf("jwt.signing-method %q is not supported", o.SigningMethod))
	}

	return errs
}

// Complete fills the key from the environment when not set on the CLI.
func (o *Options) Complete() error {
	if o.Key == "" {
		o.Key = os.Getenv("JWT_KEY")
	}
	return nil
}
