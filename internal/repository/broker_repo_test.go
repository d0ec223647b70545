package repository

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignParams(t *testing.T) {
	params := map[string]string{
		"app_id":      "app123",
		"customer_id": "cust456",
		"symbol":      "600519",
		"empty":       "",
		"sign":        "should-be-ignored",
	}
	secret := "topsecret"

	// Keys sorted, empty values and the sign field skipped, secret on both
	// ends, MD5 upper hex.
	expectedBase := "topsecret" + "app_id" + "app123" + "customer_id" + "cust456" + "symbol" + "600519" + "topsecret"
	sum := md5.Sum([]byte(expectedBase))
	expected := strings.ToUpper(hex.EncodeToString(sum[:]))

	assert.Equal(t, expected, signParams(params, secret))
}

func TestSignParams_Deterministic(t *testing.T) {
	params := map[string]string{"b": "2", "a": "1", "c": "3"}
	first := signParams(params, "s")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, signParams(params, "s"))
	}
}

func TestInferMarket(t *testing.T) {
	assert.Equal(t, "SH", inferMarket("600519"))
	assert.Equal(t, "SZ", inferMarket("000001"))
	assert.Equal(t, "SZ", inferMarket("300750"))
}

func TestIsBrokerSuccess(t *testing.T) {
	assert.True(t, isBrokerSuccess("0"))
	assert.True(t, isBrokerSuccess("000000"))
	assert.True(t, isBrokerSuccess("success"))
	assert.False(t, isBrokerSuccess("1001"))
	assert.False(t, isBrokerSuccess(""))
}
