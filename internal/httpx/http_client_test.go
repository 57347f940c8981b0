package httpx

import (
	"testing"
	"time"
)

func TestDefaultClientTimeouts(t *testing.T) {
	if ValidateClient.Timeout != defaultValidateTimeout {
		t.Fatalf("validate timeout = %s, want %s", ValidateClient.Timeout, defaultValidateTimeout)
	}
	if GenerateClient.Timeout != defaultGenerateTimeout {
		t.Fatalf("generate timeout = %s, want %s", GenerateClient.Timeout, defaultGenerateTimeout)
	}
}

func TestConfigureClients(t *testing.T) {
	origValidate := ValidateClient.Timeout
	origGenerate := GenerateClient.Timeout
	t.Cleanup(func() {
		ValidateClient.Timeout = origValidate
		GenerateClient.Timeout = origGenerate
	})

	v, g := ConfigureClients(0, 0)
	if v != defaultValidateTimeout || g != defaultGenerateTimeout {
		t.Fatalf("ConfigureClients(0, 0) = %s, %s", v, g)
	}

	v, g = ConfigureClients(5, 120)
	if v != 5*time.Second || g != 120*time.Second {
		t.Fatalf("ConfigureClients(5, 120) = %s, %s", v, g)
	}
	if ValidateClient.Timeout != 5*time.Second || GenerateClient.Timeout != 120*time.Second {
		t.Fatalf("configured timeouts = %s, %s", ValidateClient.Timeout, GenerateClient.Timeout)
	}
}
