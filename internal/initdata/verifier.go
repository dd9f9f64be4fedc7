package initdata

import (
	"net/url"
	"strings"
	"time"
)

// DefaultMaxAge is the freshness window applied when Config.MaxAge is zero
const DefaultMaxAge = 24 * time.Hour

// Config is the immutable verification configuration
type Config struct {
	// Secret is the bot token issued by the platform. Required.
	Secret string

	// MaxAge is the freshness window. Zero means DefaultMaxAge.
	// Sub-second precision is truncated.
	MaxAge time.Duration

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Verdict is the outcome of one verification call
type Verdict struct {
	Accepted bool
	Identity *Identity
	Params   LaunchParams
	Reason   ErrorKind
}

// Err returns nil for accepted verdicts and a *RejectionError otherwise
func (v Verdict) Err() error {
	if v.Accepted {
		return nil
	}
	return reject(v.Reason)
}

func accepted(identity *Identity, params LaunchParams) Verdict {
	return Verdict{Accepted: true, Identity: identity, Params: params}
}

func rejected(err error) Verdict {
	kind := KindOf(err)
	if kind == "" {
		kind = MalformedData
	}
	return Verdict{Reason: kind}
}

// Verifier authenticates launch payloads. It holds no mutable state and is
// safe for concurrent use.
type Verifier struct {
	secret string
	maxAge int64
	now    func() time.Time
}

// NewVerifier validates cfg and returns a verifier. An empty secret or a
// negative window yields a ConfigurationError.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, reject(ConfigurationError)
	}
	if cfg.MaxAge < 0 {
		return nil, reject(ConfigurationError)
	}

	maxAge := cfg.MaxAge
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	if maxAge < time.Second {
		return nil, reject(ConfigurationError)
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Verifier{
		secret: cfg.Secret,
		maxAge: int64(maxAge / time.Second),
		now:    now,
	}, nil
}

// MaxAge returns the configured freshness window
func (v *Verifier) MaxAge() time.Duration {
	return time.Duration(v.maxAge) * time.Second
}

// Verify runs the full pipeline and requires an identity in the user field
func (v *Verifier) Verify(raw string) Verdict {
	return v.run(raw, true)
}

// VerifySignature checks signature and freshness only. The user field is not
// decoded and the accepted verdict carries no identity.
func (v *Verifier) VerifySignature(raw string) Verdict {
	return v.run(raw, false)
}

func (v *Verifier) run(raw string, withIdentity bool) Verdict {
	now := v.now().Unix()

	fields, signature, err := Canonicalize(raw)
	if err != nil {
		return rejected(err)
	}

	key := DeriveKey(v.secret)
	if err := checkSignature(DataCheckString(fields), key, signature); err != nil {
		return rejected(err)
	}

	authDate, err := parseAuthDate(fields)
	if err != nil {
		return rejected(err)
	}
	if err := checkFreshness(authDate, now, v.maxAge); err != nil {
		return rejected(err)
	}

	params := launchParams(fields, authDate)
	if !withIdentity {
		return accepted(nil, params)
	}

	identity, err := extractIdentity(fields)
	if err != nil {
		return rejected(err)
	}

	return accepted(identity, params)
}

// Encode builds a signed payload from fields, appending the hash computed with
// secret. Used by tests and development tooling to mint launch payloads.
func Encode(fields []Field, secret string) string {
	fs := newFieldSet()
	for _, f := range fields {
		fs.set(f.Key, f.Value)
	}
	fs = fs.without(FieldHash)

	hash := Sign(DataCheckString(fs), DeriveKey(secret))

	parts := make([]string, 0, fs.Len()+1)
	for _, f := range fs.fields {
		parts = append(parts, url.QueryEscape(f.Key)+"="+url.QueryEscape(f.Value))
	}
	parts = append(parts, FieldHash+"="+hash)

	return strings.Join(parts, "&")
}
