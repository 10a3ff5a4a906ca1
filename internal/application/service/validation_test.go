package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("biller@shop.in"))
	assert.Error(t, ValidateEmail("biller@shop"))
	assert.Error(t, ValidateEmail("biller shop@x.in"))
	assert.Error(t, ValidateEmail(""))
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("9876543210"))
	assert.Error(t, ValidatePhone("987654321"))
	assert.Error(t, ValidatePhone("98765432100"))
	assert.Error(t, ValidatePhone("98765abcde"))
}

func TestValidateUpiID(t *testing.T) {
	assert.NoError(t, ValidateUpiID("shop.name-1@okaxis"))
	assert.NoError(t, ValidateUpiID("9876543210@ybl"))
	assert.Error(t, ValidateUpiID("shop@ok-axis"))
	assert.Error(t, ValidateUpiID("shop"))
	assert.Error(t, ValidateUpiID("@bank"))
}
