package fatsecret

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// signatureMethod is the only signature method FatSecret's OAuth1 endpoints
// accept.
const signatureMethod = "HMAC-SHA1"

// nonceBytes is the entropy per nonce; hex-encoded it yields 32 characters.
const nonceBytes = 16

// Signer computes OAuth 1.0a HMAC-SHA1 signatures per RFC 5849. A Signer is
// immutable after construction and safe for concurrent use: Sign performs no
// I/O and keeps no state beyond the configured credentials.
//
// Without a user token the Signer produces two-legged (consumer-only)
// signatures; with one it produces three-legged signatures that include
// oauth_token and mix the token secret into the signing key.
type Signer struct {
	consumerKey    string
	consumerSecret string
	token          string
	tokenSecret    string
}

// NewSigner creates a two-legged signer from consumer credentials.
func NewSigner(consumerKey, consumerSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
	}
}

// NewUserSigner creates a three-legged signer. The token may be either a
// temporary request token (during the handshake) or a user access token.
func NewUserSigner(consumerKey, consumerSecret, token, tokenSecret string) *Signer {
	return &Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		token:          token,
		tokenSecret:    tokenSecret,
	}
}

// Sign returns the given application parameters merged with the OAuth
// protocol parameters and the computed oauth_signature, ready for form
// encoding. The URL must not carry a query string; query parameters belong
// in params. One nonce/timestamp pair is generated per call and appears
// identically in the base string and the output.
func (s *Signer) Sign(rawURL, method string, params map[string]string) map[string]string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_signature_method": signatureMethod,
		"oauth_timestamp":        strconv.FormatInt(time.Now().Unix(), 10),
		"oauth_nonce":            newNonce(),
		"oauth_version":          "1.0",
	}
	if s.token != "" {
		oauthParams["oauth_token"] = s.token
	}

	all := make(map[string]string, len(params)+len(oauthParams))
	for k, v := range params {
		all[k] = v
	}
	// OAuth params win on key collision.
	for k, v := range oauthParams {
		all[k] = v
	}

	signed := make(map[string]string, len(all)+1)
	for k, v := range all {
		signed[k] = v
	}
	signed["oauth_signature"] = s.signature(rawURL, method, all)
	return signed
}

// signature computes the base64 HMAC-SHA1 signature over the base string.
// The signing key is enc(consumerSecret)&enc(tokenSecret), with an empty
// token secret for two-legged requests.
func (s *Signer) signature(rawURL, method string, params map[string]string) string {
	base := signatureBaseString(rawURL, method, params)
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// signatureBaseString builds METHOD&enc(url)&enc(paramString) where the
// parameter string is the percent-encoded pairs sorted by encoded key, then
// encoded value, joined with "&".
func signatureBaseString(rawURL, method string, params map[string]string) string {
	type pair struct{ key, value string }

	encoded := make([]pair, 0, len(params))
	for k, v := range params {
		encoded = append(encoded, pair{percentEncode(k), percentEncode(v)})
	}
	sort.Slice(encoded, func(i, j int) bool {
		if encoded[i].key != encoded[j].key {
			return encoded[i].key < encoded[j].key
		}
		return encoded[i].value < encoded[j].value
	})

	pairs := make([]string, len(encoded))
	for i, p := range encoded {
		pairs[i] = p.key + "=" + p.value
	}
	paramString := strings.Join(pairs, "&")

	return strings.ToUpper(method) + "&" + percentEncode(rawURL) + "&" + percentEncode(paramString)
}

// percentEncode escapes a string per RFC 3986: unreserved characters
// (letters, digits, "-_.~") pass through, everything else becomes %XX.
// Space encodes to %20, never "+".
func percentEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

// newNonce returns a fresh 32-character hex nonce from a cryptographically
// strong source.
func newNonce() string {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the platform's entropy source is
		// broken; signing must not proceed with a predictable nonce.
		panic(fmt.Sprintf("nonce generation failed: %v", err))
	}
	return hex.EncodeToString(buf)
}
