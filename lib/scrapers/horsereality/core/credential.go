package core

import (
	"fmt"
	"net/http"
)

// RememberCredential is the long-lived "remember me" cookie issued by the
// site on login. It outlives any single session and is only ever presented
// to the login endpoint.
type RememberCredential struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (c RememberCredential) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("remember credential: missing cookie name")
	}
	if c.Value == "" {
		return fmt.Errorf("remember credential: missing cookie value")
	}
	return nil
}

func (c RememberCredential) cookie() *http.Cookie {
	return &http.Cookie{Name: c.Name, Value: c.Value}
}

// String never prints the cookie value.
func (c RememberCredential) String() string {
	return fmt.Sprintf("%s=<redacted>", c.Name)
}
