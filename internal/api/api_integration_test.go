// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "finvest-api/internal"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// TestMain is the special entry point for Go tests, executed once before all tests.
func TestMain(m *testing.M) {
	// 1. Set up environment variables (ensure DB_NAME points to the test database).
	// In a real CI/CD environment, these variables would be provided by the CI system.
	setupEnvVars()

	// 2. Initialize the application.
	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1)
	}

	// 3. Start an httptest server to test the HTTP handling layer.
	testServer = httptest.NewServer(testApp.HTTPHandler)
	defer testServer.Close()

	// 4. Run all tests.
	code := m.Run()

	// 5. Shut down application resources after tests.
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// setupEnvVars helper function: sets database environment variables required for testing.
func setupEnvVars() {
	if os.Getenv("SERVER_PORT") == "" {
		os.Setenv("SERVER_PORT", "8080")
	}
	if os.Getenv("DB_HOST") == "" {
		os.Setenv("DB_HOST", "localhost")
	}
	if os.Getenv("DB_PORT") == "" {
		os.Setenv("DB_PORT", "5432")
	}
	if os.Getenv("DB_USER") == "" {
		os.Setenv("DB_USER", "user")
	}
	if os.Getenv("DB_PASSWORD") == "" {
		os.Setenv("DB_PASSWORD", "password")
	}
	if os.Getenv("DB_NAME") == "" {
		os.Setenv("DB_NAME", "finvestdb_test")
	}
	if os.Getenv("DB_SSLMODE") == "" {
		os.Setenv("DB_SSLMODE", "disable")
	}
}

// clearDatabase truncates all relevant tables to ensure a clean state per test.
func clearDatabase(t *testing.T) {
	// Order is important due to foreign key dependencies.
	tables := []string{
		"orders", "cars", "kyc_records", "loans", "withdrawals", "deposits",
		"holding_lots", "holdings", "transactions", "wallets", "sessions", "users",
	}
	for _, table := range tables {
		_, err := testApp.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE;", table))
		require.NoError(t, err, "Failed to truncate table %s", table)
	}
}

// makeRequest sends an HTTP request to the test server. When token is not
// empty it is sent as a bearer token.
func makeRequest(t *testing.T, method, path, token string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(respBody)
}

// registerAndLogin creates an account through the API and returns its bearer
// token and user ID.
func registerAndLogin(t *testing.T, email, fullName string) (string, int64) {
	registerBody := fmt.Sprintf(`{"email": "%s", "full_name": "%s", "password": "secret-password"}`, email, fullName)
	resp, body := makeRequest(t, "POST", "/users", "", strings.NewReader(registerBody))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register failed: %s", body)

	loginBody := fmt.Sprintf(`{"email": "%s", "password": "secret-password"}`, email)
	resp, body = makeRequest(t, "POST", "/sessions", "", strings.NewReader(loginBody))
	require.Equal(t, http.StatusOK, resp.StatusCode, "login failed: %s", body)

	var loginMap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &loginMap))
	token := loginMap["token"].(string)
	userID := int64(loginMap["user"].(map[string]interface{})["id"].(float64))
	return token, userID
}

// promoteToAdmin flips the admin flag directly; there is no API for it.
func promoteToAdmin(t *testing.T, userID int64) {
	_, err := testApp.DB.ExecContext(context.Background(), "UPDATE users SET is_admin = TRUE WHERE id = $1", userID)
	require.NoError(t, err)
}

// walletBalance reads the caller's balance through the API.
func walletBalance(t *testing.T, token string) decimal.Decimal {
	resp, body := makeRequest(t, "GET", "/wallet", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balanceMap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &balanceMap))
	balance, err := decimal.NewFromString(balanceMap["balance"].(string))
	require.NoError(t, err)
	return balance
}

// approveKyc submits and approves a KYC record so withdrawal tests can run.
func approveKyc(t *testing.T, token, adminToken string) {
	resp, body := makeRequest(t, "POST", "/kyc", token,
		strings.NewReader(`{"full_name": "Test User", "document_type": "passport", "document_base64": "aGVsbG8="}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "kyc submit failed: %s", body)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &record))
	kycID := int64(record["id"].(float64))

	resp, body = makeRequest(t, "PUT", fmt.Sprintf("/kyc/%d/status", kycID), adminToken,
		strings.NewReader(`{"status": "APPROVED"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode, "kyc approve failed: %s", body)
}

// TestAuthIntegration covers registration, login and token enforcement.
func TestAuthIntegration(t *testing.T) {
	clearDatabase(t)

	t.Run("RegisterAndLogin", func(t *testing.T) {
		token, _ := registerAndLogin(t, "auth_user@example.com", "Auth User")

		resp, body := makeRequest(t, "GET", "/users/me", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "auth_user@example.com")
		assert.NotContains(t, body, "password")
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		requestBody := `{"email": "auth_user@example.com", "full_name": "Other", "password": "secret-password"}`
		resp, _ := makeRequest(t, "POST", "/users", "", strings.NewReader(requestBody))
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("MissingToken", func(t *testing.T) {
		resp, _ := makeRequest(t, "GET", "/users/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("AdminRouteForbiddenForRegularUser", func(t *testing.T) {
		token, _ := registerAndLogin(t, "plain_user@example.com", "Plain User")
		resp, _ := makeRequest(t, "GET", "/users", token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/sessions", "",
			strings.NewReader(`{"email": "auth_user@example.com", "password": "wrong-password"}`))
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

// TestDepositApprovalIntegration covers the deposit request and review flow,
// including the idempotence of a repeated approval.
func TestDepositApprovalIntegration(t *testing.T) {
	clearDatabase(t)
	userToken, _ := registerAndLogin(t, "deposit_user@example.com", "Deposit User")
	adminToken, adminID := registerAndLogin(t, "deposit_admin@example.com", "Deposit Admin")
	promoteToAdmin(t, adminID)

	resp, body := makeRequest(t, "POST", "/deposits", userToken,
		strings.NewReader(`{"amount": "250.00", "method": "bank_transfer"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "deposit request failed: %s", body)
	var deposit map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &deposit))
	depositID := int64(deposit["id"].(float64))
	assert.Equal(t, "PENDING", deposit["status"])

	// Balance is untouched while the deposit is pending.
	assert.True(t, walletBalance(t, userToken).IsZero())

	t.Run("ApprovalCreditsWallet", func(t *testing.T) {
		resp, body := makeRequest(t, "PUT", fmt.Sprintf("/deposits/%d/status", depositID), adminToken,
			strings.NewReader(`{"status": "APPROVED"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode, "approval failed: %s", body)

		expected := decimal.NewFromFloat(250.00)
		assert.True(t, expected.Equal(walletBalance(t, userToken)), "Balance should equal the approved amount")
	})

	t.Run("RepeatedApprovalIsNoOp", func(t *testing.T) {
		resp, body := makeRequest(t, "PUT", fmt.Sprintf("/deposits/%d/status", depositID), adminToken,
			strings.NewReader(`{"status": "APPROVED"}`))
		assert.Equal(t, http.StatusOK, resp.StatusCode, "second approval failed: %s", body)

		// Crediting must not happen twice.
		expected := decimal.NewFromFloat(250.00)
		assert.True(t, expected.Equal(walletBalance(t, userToken)), "Balance must not be credited twice")
	})

	t.Run("HistoryRecordsTheCredit", func(t *testing.T) {
		resp, body := makeRequest(t, "GET", "/wallet/transactions?limit=10&offset=0", userToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var historyMap map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &historyMap))
		assert.Len(t, historyMap["data"].([]interface{}), 1, "Exactly one audit record for the credit")
	})
}

// TestTradeIntegration walks a position through two merged buys and a full
// sell, checking the weighted average after every step.
func TestTradeIntegration(t *testing.T) {
	clearDatabase(t)
	token, _ := registerAndLogin(t, "trade_user@example.com", "Trade User")

	t.Run("FirstBuyIncludesFeesInCost", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/holdings/buy", token,
			strings.NewReader(`{"symbol": "AAPL", "quantity": "10", "price": "100", "fees": "5"}`))
		require.Equal(t, http.StatusCreated, resp.StatusCode, "buy failed: %s", body)

		var tradeMap map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &tradeMap))
		holding := tradeMap["holding"].(map[string]interface{})
		assertDecimalField(t, holding, "quantity", "10")
		assertDecimalField(t, holding, "avg_purchase_price", "100.5")
		assertDecimalField(t, holding, "total_invested", "1005")
	})

	t.Run("SecondBuyMergesIntoThePosition", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/holdings/buy", token,
			strings.NewReader(`{"symbol": "AAPL", "quantity": "5", "price": "120", "fees": "0"}`))
		require.Equal(t, http.StatusCreated, resp.StatusCode, "buy failed: %s", body)

		var tradeMap map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &tradeMap))
		holding := tradeMap["holding"].(map[string]interface{})
		assertDecimalField(t, holding, "quantity", "15")
		assertDecimalField(t, holding, "avg_purchase_price", "107")
		assertDecimalField(t, holding, "total_invested", "1605")
	})

	t.Run("OversellIsRejected", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/holdings/sell", token,
			strings.NewReader(`{"symbol": "AAPL", "quantity": "20", "price": "110", "fees": "0"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.True(t, walletBalance(t, token).IsZero(), "A rejected sell must not credit the wallet")
	})

	t.Run("FullSellClosesAndCreditsNetProceeds", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/holdings/sell", token,
			strings.NewReader(`{"symbol": "AAPL", "quantity": "15", "price": "110", "fees": "10"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode, "sell failed: %s", body)

		var tradeMap map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &tradeMap))
		assert.Nil(t, tradeMap["holding"], "A full sell deletes the position")

		expected := decimal.NewFromFloat(1640.00) // 15*110 - 10
		assert.True(t, expected.Equal(walletBalance(t, token)))

		respGet, _ := makeRequest(t, "GET", "/holdings/AAPL", token, nil)
		assert.Equal(t, http.StatusNotFound, respGet.StatusCode)
	})
}

// TestWithdrawalIntegration covers the KYC gate and the debit-then-refund flow.
func TestWithdrawalIntegration(t *testing.T) {
	clearDatabase(t)
	userToken, _ := registerAndLogin(t, "withdraw_user@example.com", "Withdraw User")
	adminToken, adminID := registerAndLogin(t, "withdraw_admin@example.com", "Withdraw Admin")
	promoteToAdmin(t, adminID)

	t.Run("RejectedWithoutApprovedKyc", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/withdrawals", userToken,
			strings.NewReader(`{"amount": "50.00", "destination": "DE89370400440532013000"}`))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	approveKyc(t, userToken, adminToken)

	// Fund the wallet through an approved deposit.
	resp, body := makeRequest(t, "POST", "/deposits", userToken,
		strings.NewReader(`{"amount": "300.00", "method": "bank_transfer"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var deposit map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &deposit))
	resp, _ = makeRequest(t, "PUT", fmt.Sprintf("/deposits/%d/status", int64(deposit["id"].(float64))), adminToken,
		strings.NewReader(`{"status": "APPROVED"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	t.Run("RequestDebitsImmediately", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/withdrawals", userToken,
			strings.NewReader(`{"amount": "120.00", "destination": "DE89370400440532013000"}`))
		require.Equal(t, http.StatusCreated, resp.StatusCode, "withdrawal failed: %s", body)

		expected := decimal.NewFromFloat(180.00)
		assert.True(t, expected.Equal(walletBalance(t, userToken)))
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/withdrawals", userToken,
			strings.NewReader(`{"amount": "1000.00", "destination": "DE89370400440532013000"}`))
		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	})

	t.Run("RejectionRefundsTheDebit", func(t *testing.T) {
		resp, body := makeRequest(t, "GET", "/withdrawals?limit=10&offset=0", userToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var listMap map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &listMap))
		withdrawal := listMap["data"].([]interface{})[0].(map[string]interface{})
		withdrawalID := int64(withdrawal["id"].(float64))

		resp, body = makeRequest(t, "PUT", fmt.Sprintf("/withdrawals/%d/status", withdrawalID), adminToken,
			strings.NewReader(`{"status": "REJECTED"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode, "rejection failed: %s", body)

		expected := decimal.NewFromFloat(300.00)
		assert.True(t, expected.Equal(walletBalance(t, userToken)), "Rejection should restore the balance")
	})
}

// TestOrderIntegration covers the checkout state machine end to end.
func TestOrderIntegration(t *testing.T) {
	clearDatabase(t)
	userToken, _ := registerAndLogin(t, "order_user@example.com", "Order User")
	adminToken, adminID := registerAndLogin(t, "order_admin@example.com", "Order Admin")
	promoteToAdmin(t, adminID)

	resp, body := makeRequest(t, "POST", "/cars", adminToken,
		strings.NewReader(`{"model": "Taycan", "year": 2024, "price": "85000.00"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "car create failed: %s", body)
	var car map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &car))
	carID := int64(car["id"].(float64))

	resp, body = makeRequest(t, "POST", "/orders", userToken,
		strings.NewReader(fmt.Sprintf(`{"car_id": %d}`, carID)))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "checkout failed: %s", body)
	var order map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &order))
	orderID := int64(order["id"].(float64))
	assert.Equal(t, "PENDING", order["status"])

	t.Run("ReservedCarCannotBeOrderedAgain", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/orders", userToken,
			strings.NewReader(fmt.Sprintf(`{"car_id": %d}`, carID)))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("MalformedPaymentHashRejected", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", fmt.Sprintf("/orders/%d/payment", orderID), userToken,
			strings.NewReader(`{"payment_hash": "not-a-hash"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("PaymentMovesOrderToPaid", func(t *testing.T) {
		hash := "0x" + strings.Repeat("ab", 32)
		resp, body := makeRequest(t, "POST", fmt.Sprintf("/orders/%d/payment", orderID), userToken,
			strings.NewReader(fmt.Sprintf(`{"payment_hash": "%s"}`, hash)))
		require.Equal(t, http.StatusOK, resp.StatusCode, "payment failed: %s", body)

		var paid map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &paid))
		assert.Equal(t, "PAID", paid["status"])
	})

	t.Run("OnlyAdminConfirms", func(t *testing.T) {
		resp, _ := makeRequest(t, "PUT", fmt.Sprintf("/orders/%d/status", orderID), userToken,
			strings.NewReader(`{"status": "CONFIRMED"}`))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, body := makeRequest(t, "PUT", fmt.Sprintf("/orders/%d/status", orderID), adminToken,
			strings.NewReader(`{"status": "CONFIRMED"}`))
		require.Equal(t, http.StatusOK, resp.StatusCode, "confirm failed: %s", body)
		var confirmed map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &confirmed))
		assert.Equal(t, "CONFIRMED", confirmed["status"])
	})

	t.Run("ConfirmedOrderCannotBeCancelled", func(t *testing.T) {
		resp, _ := makeRequest(t, "PUT", fmt.Sprintf("/orders/%d/status", orderID), userToken,
			strings.NewReader(`{"status": "CANCELLED"}`))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

// assertDecimalField compares a decimal JSON field by value, not by string.
func assertDecimalField(t *testing.T, m map[string]interface{}, field, want string) {
	t.Helper()
	got, err := decimal.NewFromString(m[field].(string))
	require.NoError(t, err, "field %s", field)
	expected, err := decimal.NewFromString(want)
	require.NoError(t, err)
	assert.True(t, expected.Equal(got), "field %s: want %s, got %s", field, want, got)
}
