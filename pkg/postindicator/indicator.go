// Package postindicator tells a form whether the current request is a
// submission of that form. Each rendered form carries a hidden input whose
// value is a token issued by a Store; a request is a submission when it is a
// POST that echoes a token the Store issued for the same form.
package postindicator

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL bounds how long an issued token is accepted.
	DefaultTTL = time.Hour
	// DefaultPrefix prefixes the hidden input name.
	DefaultPrefix  = "formidable_"
	defaultCleanup = 10 * time.Minute
)

// Indicator is the post indicator collaborator consumed by forms.
type Indicator interface {
	// Name is the hidden input name carrying the token.
	Name() string
	Token() (string, error)
	Posted(r *http.Request) bool
}

// Store issues and remembers tokens. It is safe for concurrent use and is
// meant to be shared by every form built from a factory.
type Store struct {
	tokens *gocache.Cache
	ttl    time.Duration
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix sets the hidden input name prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// NewStore returns an empty token store.
func NewStore(opts ...Option) *Store {
	s := &Store{ttl: DefaultTTL, prefix: DefaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.tokens = gocache.New(s.ttl, defaultCleanup)
	return s
}

// For returns the indicator of the named form. An empty name is allowed and
// yields the bare prefix.
func (s *Store) For(form string) Indicator {
	return &tokenIndicator{store: s, form: form}
}

// Issued reports how many unexpired tokens the store holds.
func (s *Store) Issued() int {
	return s.tokens.ItemCount()
}

func (s *Store) issue(form string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("postindicator: generate token: %w", err)
	}
	token := id.String()
	s.tokens.Set(token, form, s.ttl)
	return token, nil
}

func (s *Store) valid(form, token string) bool {
	if token == "" {
		return false
	}
	owner, ok := s.tokens.Get(token)
	if !ok {
		return false
	}
	name, _ := owner.(string)
	return name == form
}

type tokenIndicator struct {
	store *Store
	form  string
	token string
}

var _ Indicator = (*tokenIndicator)(nil)

func (i *tokenIndicator) Name() string {
	return i.store.prefix + i.form
}

// Token issues a token on first use and returns the same one afterwards.
func (i *tokenIndicator) Token() (string, error) {
	if i.token != "" {
		return i.token, nil
	}
	token, err := i.store.issue(i.form)
	if err != nil {
		return "", err
	}
	i.token = token
	return token, nil
}

func (i *tokenIndicator) Posted(r *http.Request) bool {
	if r == nil || r.Method != http.MethodPost {
		return false
	}
	token := strings.TrimSpace(r.PostFormValue(i.Name()))
	return i.store.valid(i.form, token)
}
