package httpx

import (
	"net/http"
	"time"
)

const (
	defaultValidateTimeout = 10 * time.Second
	defaultGenerateTimeout = 30 * time.Second
)

// ValidateClient is used for cheap credential test calls.
var ValidateClient = &http.Client{
	Timeout: defaultValidateTimeout,
}

// GenerateClient is used for full generation calls.
var GenerateClient = &http.Client{
	Timeout: defaultGenerateTimeout,
}

// ConfigureClients applies configured timeouts (in seconds) to the shared
// clients. Zero or negative values keep the defaults. Returns the applied
// timeouts for startup logging.
func ConfigureClients(validateSeconds, generateSeconds int) (time.Duration, time.Duration) {
	if validateSeconds > 0 {
		ValidateClient.Timeout = time.Duration(validateSeconds) * time.Second
	}
	if generateSeconds > 0 {
		GenerateClient.Timeout = time.Duration(generateSeconds) * time.Second
	}
	return ValidateClient.Timeout, GenerateClient.Timeout
}
