package signature

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nowTimestamp() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

func TestVerifier_Verify_Valid(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	body := []byte(`{"type":"payment.succeeded"}`)
	ts := nowTimestamp()
	sig := v.Sign(body, "msg_1", ts)

	assert.NoError(t, v.Verify(body, "msg_1", ts, sig))
}

func TestVerifier_Verify_TamperedBody(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	ts := nowTimestamp()
	sig := v.Sign([]byte(`{"total_amount":59900}`), "msg_1", ts)

	err = v.Verify([]byte(`{"total_amount":1}`), "msg_1", ts, sig)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestVerifier_Verify_WrongSecret(t *testing.T) {
	signer, err := NewVerifier("secret-a")
	require.NoError(t, err)
	verifier, err := NewVerifier("secret-b")
	require.NoError(t, err)

	body := []byte(`{}`)
	ts := nowTimestamp()
	sig := signer.Sign(body, "msg_1", ts)

	assert.ErrorIs(t, verifier.Verify(body, "msg_1", ts, sig), ErrNoMatch)
}

func TestVerifier_Verify_MissingHeaders(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	assert.ErrorIs(t, v.Verify([]byte(`{}`), "", nowTimestamp(), "v1,abc"), ErrMissingHeaders)
	assert.ErrorIs(t, v.Verify([]byte(`{}`), "msg_1", "", "v1,abc"), ErrMissingHeaders)
	assert.ErrorIs(t, v.Verify([]byte(`{}`), "msg_1", nowTimestamp(), ""), ErrMissingHeaders)
}

func TestVerifier_Verify_StaleTimestamp(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)
	v.now = func() time.Time { return time.Now().Add(time.Hour) }

	body := []byte(`{}`)
	ts := nowTimestamp()
	sig := v.Sign(body, "msg_1", ts)

	assert.ErrorIs(t, v.Verify(body, "msg_1", ts, sig), ErrTimestampTooOld)
}

func TestVerifier_Verify_InvalidTimestamp(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	assert.ErrorIs(t, v.Verify([]byte(`{}`), "msg_1", "not-a-number", "v1,abc"), ErrInvalidTimestamp)
}

func TestVerifier_WhsecPrefix(t *testing.T) {
	raw := []byte("portal-shared-secret")
	portal := "whsec_" + base64.StdEncoding.EncodeToString(raw)

	portalVerifier, err := NewVerifier(portal)
	require.NoError(t, err)
	rawVerifier, err := NewVerifier(string(raw))
	require.NoError(t, err)

	body := []byte(`{"status":"succeeded"}`)
	ts := nowTimestamp()

	// The same key bytes must produce the same signature either way.
	assert.Equal(t, rawVerifier.Sign(body, "msg_1", ts), portalVerifier.Sign(body, "msg_1", ts))
	assert.NoError(t, portalVerifier.Verify(body, "msg_1", ts, rawVerifier.Sign(body, "msg_1", ts)))
}

func TestVerifier_Verify_MultipleSignatures(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	body := []byte(`{}`)
	ts := nowTimestamp()
	good := v.Sign(body, "msg_1", ts)
	header := "v1,Zm9vYmFy " + good

	assert.NoError(t, v.Verify(body, "msg_1", ts, header))
}

func TestVerifier_Verify_StrippedPadding(t *testing.T) {
	v, err := NewVerifier("test-secret")
	require.NoError(t, err)

	body := []byte(`{}`)
	ts := nowTimestamp()
	sig := v.Sign(body, "msg_1", ts)

	trimmed := strings.TrimRight(sig, "=")
	assert.NoError(t, v.Verify(body, "msg_1", ts, trimmed))
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.Error(t, err)
}
