package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jengzang/accel-dashboard-go/internal/healthapi"
)

func TestRegistrationFailureMessage(t *testing.T) {
	assert.Equal(t, "Registration failed: Username already exists",
		registrationFailure(&healthapi.APIError{Status: 400, Message: "Username already exists"}))
	assert.Equal(t, "Registration failed (status 500)",
		registrationFailure(&healthapi.APIError{Status: 500, Message: "Registration failed (status 500)"}))
	assert.Equal(t, "Registration failed: Connection error: refused",
		registrationFailure(&healthapi.ConnectionError{Op: "register_user", Err: errors.New("refused")}))
}
