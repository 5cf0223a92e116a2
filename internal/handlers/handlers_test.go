package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, validateEmail("user@example.com"))
	assert.True(t, validateEmail("first.last+tag@sub.example.co"))
	assert.False(t, validateEmail("not-an-email"))
	assert.False(t, validateEmail("missing@tld"))
	assert.False(t, validateEmail("@example.com"))
	assert.False(t, validateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, validatePassword("secret12"))
	assert.True(t, validatePassword("Correct1HorseBattery"))
	assert.False(t, validatePassword("short1"), "below 8 characters")
	assert.False(t, validatePassword("onlyletters"), "needs a number")
	assert.False(t, validatePassword("12345678"), "needs a letter")
}

func TestValidateUsername(t *testing.T) {
	assert.True(t, validateUsername("lifter_42"))
	assert.False(t, validateUsername("ab"), "below 3 characters")
	assert.False(t, validateUsername("has space"))
	assert.False(t, validateUsername("dash-ed"))
}
