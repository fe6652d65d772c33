package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evenlyhq/evenly/internal/auth"
	"github.com/evenlyhq/evenly/internal/config"
	"github.com/evenlyhq/evenly/internal/events"
	"github.com/evenlyhq/evenly/internal/storage/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTDuration:   time.Hour,
		AuthRateLimit: 1000,
	}
	server := NewServer(
		store,
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager(cfg.JWTSecret, cfg.JWTDuration),
		events.NoopPublisher{},
		nil, // metrics use the global registry, skipped in tests
		cfg,
	)
	return server.Router()
}

type testClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// signup registers a user and returns an authenticated client.
func signup(t *testing.T, handler http.Handler, name, email string) (*testClient, string) {
	t.Helper()
	c := &testClient{t: t, handler: handler}
	rec := c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	c.token = body["token"].(string)
	userID := body["user"].(map[string]any)["id"].(string)
	return c, userID
}

func TestAuthFlow(t *testing.T) {
	handler := newTestServer(t)
	client := &testClient{t: t, handler: handler}

	t.Run("register and me", func(t *testing.T) {
		c, _ := signup(t, handler, "Alice", "alice@example.com")

		rec := c.do(http.MethodGet, "/api/auth/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice@example.com", user["email"])
		assert.Equal(t, "Alice", user["displayName"])
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		rec := client.do(http.MethodPost, "/api/auth/register", map[string]any{
			"name":     "Imposter",
			"email":    "alice@example.com",
			"password": "another-pass",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := client.do(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
	})

	t.Run("login normalizes email case", func(t *testing.T) {
		rec := client.do(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "ALICE@example.com",
			"password": "correct-horse",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("protected route requires token", func(t *testing.T) {
		rec := client.do(http.MethodGet, "/api/groups", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func createGroup(t *testing.T, c *testClient, name string) string {
	t.Helper()
	rec := c.do(http.MethodPost, "/api/groups", map[string]any{
		"name":     name,
		"category": "trip",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["group"].(map[string]any)["id"].(string)
}

func addMember(t *testing.T, c *testClient, groupID, email string) {
	t.Helper()
	rec := c.do(http.MethodPost, "/api/groups/"+groupID+"/members", map[string]any{"email": email})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGroupLifecycle(t *testing.T) {
	handler := newTestServer(t)
	alice, _ := signup(t, handler, "Alice", "alice@example.com")
	bob, bobID := signup(t, handler, "Bob", "bob@example.com")

	groupID := createGroup(t, alice, "Lisbon Trip")
	addMember(t, alice, groupID, "bob@example.com")

	t.Run("member can view group", func(t *testing.T) {
		rec := bob.do(http.MethodGet, "/api/groups/"+groupID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		group := decodeBody(t, rec)["group"].(map[string]any)
		members := group["members"].([]any)
		assert.Len(t, members, 2)
	})

	t.Run("non-admin cannot add members", func(t *testing.T) {
		signup(t, handler, "Carol", "carol@example.com")
		rec := bob.do(http.MethodPost, "/api/groups/"+groupID+"/members", map[string]any{
			"email": "carol@example.com",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("adding the same member twice fails", func(t *testing.T) {
		rec := alice.do(http.MethodPost, "/api/groups/"+groupID+"/members", map[string]any{
			"email": "bob@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("outsider gets access denied", func(t *testing.T) {
		carol := &testClient{t: t, handler: handler}
		rec := carol.do(http.MethodPost, "/api/auth/login", map[string]any{
			"email":    "carol@example.com",
			"password": "correct-horse",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		carol.token = decodeBody(t, rec)["token"].(string)

		rec = carol.do(http.MethodGet, "/api/groups/"+groupID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin removes member", func(t *testing.T) {
		rec := alice.do(http.MethodDelete, "/api/groups/"+groupID+"/members/"+bobID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = bob.do(http.MethodGet, "/api/groups/"+groupID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("only creator archives", func(t *testing.T) {
		otherID := createGroup(t, bob, "Bob's group")
		addMember(t, bob, otherID, "alice@example.com")

		rec := alice.do(http.MethodDelete, "/api/groups/"+otherID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = bob.do(http.MethodDelete, "/api/groups/"+otherID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func addExpense(t *testing.T, c *testClient, groupID string, title string, amount float64, paidBy string, participants ...string) string {
	t.Helper()
	part := make([]map[string]any, len(participants))
	for i, p := range participants {
		part[i] = map[string]any{"user": p}
	}
	rec := c.do(http.MethodPost, "/api/expenses", map[string]any{
		"groupId":      groupID,
		"title":        title,
		"amount":       amount,
		"paidBy":       paidBy,
		"participants": part,
		"splitType":    "equal",
		"category":     "food",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["expense"].(map[string]any)["id"].(string)
}

func TestExpenses(t *testing.T) {
	handler := newTestServer(t)
	alice, aliceID := signup(t, handler, "Alice", "alice@example.com")
	bob, bobID := signup(t, handler, "Bob", "bob@example.com")

	groupID := createGroup(t, alice, "Flat")
	addMember(t, alice, groupID, "bob@example.com")

	t.Run("equal split shares sum to amount", func(t *testing.T) {
		_, carolID := signup(t, handler, "Carol", "carol@example.com")
		addMember(t, alice, groupID, "carol@example.com")

		expenseID := addExpense(t, alice, groupID, "Dinner", 100.00, aliceID, aliceID, bobID, carolID)

		rec := alice.do(http.MethodGet, "/api/expenses/"+expenseID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		expense := decodeBody(t, rec)["expense"].(map[string]any)
		participants := expense["participants"].([]any)
		require.Len(t, participants, 3)

		var sum float64
		for _, p := range participants {
			sum += p.(map[string]any)["share"].(float64)
		}
		assert.InDelta(t, 100.00, sum, 0.001)
		first := participants[0].(map[string]any)["share"].(float64)
		assert.InDelta(t, 33.34, first, 0.001)
	})

	t.Run("only creator edits", func(t *testing.T) {
		expenseID := addExpense(t, alice, groupID, "Taxi", 40.00, aliceID, aliceID, bobID)

		rec := bob.do(http.MethodPut, "/api/expenses/"+expenseID, map[string]any{
			"groupId":      groupID,
			"title":        "Taxi ride",
			"amount":       45.00,
			"participants": []map[string]any{{"user": bobID}},
			"splitType":    "equal",
			"category":     "transport",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("only creator deletes", func(t *testing.T) {
		expenseID := addExpense(t, alice, groupID, "Snacks", 12.00, aliceID, aliceID, bobID)

		rec := bob.do(http.MethodDelete, "/api/expenses/"+expenseID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = alice.do(http.MethodDelete, "/api/expenses/"+expenseID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = alice.do(http.MethodGet, "/api/expenses/"+expenseID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("participant outside the group rejected", func(t *testing.T) {
		rec := alice.do(http.MethodPost, "/api/expenses", map[string]any{
			"groupId":      groupID,
			"title":        "Ghost dinner",
			"amount":       10.0,
			"participants": []map[string]any{{"user": "not-a-member"}},
			"splitType":    "equal",
			"category":     "food",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("group listing paginates", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			addExpense(t, alice, groupID, fmt.Sprintf("Ticket %d", i), 10.00, aliceID, aliceID, bobID)
		}

		rec := alice.do(http.MethodGet, "/api/expenses/group/"+groupID+"?limit=3&page=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Len(t, body["expenses"].([]any), 3)
		pagination := body["pagination"].(map[string]any)
		assert.GreaterOrEqual(t, pagination["total"].(float64), 5.0)
	})

	t.Run("my expenses spans groups", func(t *testing.T) {
		otherID := createGroup(t, bob, "Weekend")
		addMember(t, bob, otherID, "alice@example.com")
		addExpense(t, bob, otherID, "Fuel", 30.00, bobID, bobID, aliceID)

		rec := alice.do(http.MethodGet, "/api/expenses/my", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		expenses := decodeBody(t, rec)["expenses"].([]any)

		groupIDs := map[string]bool{}
		for _, e := range expenses {
			groupIDs[e.(map[string]any)["groupId"].(string)] = true
		}
		assert.True(t, groupIDs[groupID])
		assert.True(t, groupIDs[otherID])
	})
}

func TestBalancesAndSettlements(t *testing.T) {
	handler := newTestServer(t)
	alice, aliceID := signup(t, handler, "Alice", "alice@example.com")
	bob, bobID := signup(t, handler, "Bob", "bob@example.com")

	groupID := createGroup(t, alice, "Dinner club")
	addMember(t, alice, groupID, "bob@example.com")

	// Alice pays 100, split equally. Bob owes 50.
	addExpense(t, alice, groupID, "Dinner", 100.00, aliceID, aliceID, bobID)

	t.Run("balances reflect the expense", func(t *testing.T) {
		rec := alice.do(http.MethodGet, "/api/groups/"+groupID+"/balances", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)

		byUser := map[string]float64{}
		for _, mb := range body["memberBalances"].([]any) {
			m := mb.(map[string]any)
			byUser[m["user"].(map[string]any)["id"].(string)] = m["balance"].(float64)
		}
		assert.InDelta(t, 50.00, byUser[aliceID], 0.001)
		assert.InDelta(t, -50.00, byUser[bobID], 0.001)

		debts := body["simplifiedDebts"].([]any)
		require.Len(t, debts, 1)
		debt := debts[0].(map[string]any)
		assert.Equal(t, bobID, debt["from"].(map[string]any)["id"])
		assert.Equal(t, aliceID, debt["to"].(map[string]any)["id"])
		assert.InDelta(t, 50.00, debt["amount"].(float64), 0.001)
	})

	t.Run("settlement clears the debt", func(t *testing.T) {
		rec := bob.do(http.MethodPost, "/api/settlements", map[string]any{
			"groupId": groupID,
			"paidTo":  aliceID,
			"amount":  50.00,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = alice.do(http.MethodGet, "/api/groups/"+groupID+"/balances", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Empty(t, body["simplifiedDebts"].([]any))
	})

	t.Run("self settlement rejected", func(t *testing.T) {
		rec := bob.do(http.MethodPost, "/api/settlements", map[string]any{
			"groupId": groupID,
			"paidTo":  bobID,
			"amount":  10.00,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dashboard aggregates activity", func(t *testing.T) {
		rec := alice.do(http.MethodGet, "/api/analytics/dashboard", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)

		stats := body["stats"].(map[string]any)
		assert.InDelta(t, 100.00, stats["totalSpent"].(float64), 0.001)
		assert.Equal(t, 1.0, stats["groupCount"].(float64))
		assert.Equal(t, 1.0, stats["expenseCount"].(float64))

		monthly := body["monthlyData"].([]any)
		assert.Len(t, monthly, 6)
	})
}
