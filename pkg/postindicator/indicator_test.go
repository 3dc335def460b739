package postindicator

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func post(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndicator_TokenRoundTrip(t *testing.T) {
	store := NewStore()
	rendered := store.For("signup")

	require.Equal(t, "formidable_signup", rendered.Name())
	token, err := rendered.Token()
	require.NoError(t, err)
	_, err = uuid.Parse(token)
	require.NoError(t, err)

	again, err := rendered.Token()
	require.NoError(t, err)
	require.Equal(t, token, again, "one indicator issues one token")
	require.Equal(t, 1, store.Issued())

	// The next request builds a fresh form, hence a fresh indicator.
	submitted := store.For("signup")
	require.True(t, submitted.Posted(post(url.Values{"formidable_signup": {token}})))
}

func TestIndicator_RejectsForeignSubmissions(t *testing.T) {
	store := NewStore(WithPrefix("tok_"))
	signup := store.For("signup")
	token, err := signup.Token()
	require.NoError(t, err)

	login := store.For("login")
	loginToken, err := login.Token()
	require.NoError(t, err)

	cases := map[string]*http.Request{
		"get":           httptest.NewRequest(http.MethodGet, "/signup?tok_signup="+token, nil),
		"missing":       post(url.Values{}),
		"unknown token": post(url.Values{"tok_signup": {uuid.NewString()}}),
		"other form":    post(url.Values{"tok_signup": {loginToken}}),
		"nil":           nil,
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			require.False(t, store.For("signup").Posted(req))
		})
	}
}

func TestIndicator_TokensExpire(t *testing.T) {
	store := NewStore(WithTTL(20 * time.Millisecond))
	token, err := store.For("f").Token()
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	require.False(t, store.For("f").Posted(post(url.Values{"formidable_f": {token}})))
}
