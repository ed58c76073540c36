package clientip

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePeerAddressOnly(t *testing.T) {
	ip := Resolve("10.0.0.1:52341", http.Header{})
	assert.Equal(t, "10.0.0.1", ip)
}

func TestResolveForwardedForFirstToken(t *testing.T) {
	header := http.Header{}
	header.Set("X-Forwarded-For", "203.0.113.5, 70.41.3.18")

	ip := Resolve("10.0.0.1:52341", header)
	assert.Equal(t, "203.0.113.5", ip)
}

func TestResolveRealIPWins(t *testing.T) {
	header := http.Header{}
	header.Set("X-Forwarded-For", "203.0.113.5, 70.41.3.18")
	header.Set("X-Real-IP", "198.51.100.9")

	ip := Resolve("10.0.0.1:52341", header)
	assert.Equal(t, "198.51.100.9", ip)
}

func TestResolvePeerWithoutPort(t *testing.T) {
	ip := Resolve("192.0.2.7", http.Header{})
	assert.Equal(t, "192.0.2.7", ip)
}

func TestResolveIgnoresEmptyForwardedToken(t *testing.T) {
	header := http.Header{}
	header.Set("X-Forwarded-For", " , 70.41.3.18")

	ip := Resolve("10.0.0.1:52341", header)
	assert.Equal(t, "10.0.0.1", ip)
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/get-client-ip", nil)
	r.RemoteAddr = "10.0.0.1:41000"
	r.Header.Set("X-Real-IP", "198.51.100.9")

	assert.Equal(t, "198.51.100.9", FromRequest(r))
}
