/*
scenarios_test.go - Tests for demo scenario loaders

Verifies each scenario seeds the state its description promises:
staff, salary structures, leave types, balances, and for the mid-year
scenario a payroll run plus requests in several lifecycle states.
*/
package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_FreshSchool(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/scenarios/load", map[string]any{
		"scenario": "fresh-school",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, "GET", server.URL+"/api/employees/active", nil)
	var staff []struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &staff)
	assert.Len(t, staff, 5)

	resp = doJSON(t, "GET", server.URL+"/api/leave-types", nil)
	var types []struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &types)
	assert.Len(t, types, 3)

	// No payroll yet in the fresh scenario.
	resp = doJSON(t, "GET", server.URL+"/api/payroll/records", nil)
	var records []any
	decodeBody(t, resp, &records)
	assert.Empty(t, records)
}

func TestLoadScenario_MidYear(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/scenarios/load", map[string]any{
		"scenario": "mid-year",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, "GET", server.URL+"/api/payroll/records", nil)
	var records []any
	decodeBody(t, resp, &records)
	assert.Len(t, records, 5, "one payslip per staff member for last month")

	// One request is still pending; two were decided.
	resp = doJSON(t, "GET", server.URL+"/api/leaves/pending", nil)
	var pending []any
	decodeBody(t, resp, &pending)
	assert.Len(t, pending, 1)
}

func TestLoadScenario_Unknown(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/api/scenarios/load", map[string]any{
		"scenario": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
