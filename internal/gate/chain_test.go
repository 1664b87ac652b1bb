package gate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/sentience-labs/x402-gateway/internal/gate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// spyGate records invocations and returns a fixed outcome.
type spyGate struct {
	name      string
	calls     int
	rejection *gate.Rejection
}

func (s *spyGate) Name() string { return s.name }

func (s *spyGate) Check(_ *gin.Context, _ *gate.Context) *gate.Rejection {
	s.calls++
	return s.rejection
}

// fakeReputation returns a fixed score for every identity.
type fakeReputation struct {
	score int64
}

func (f fakeReputation) ScoreOf(_ context.Context, _ string) (int64, int, error) {
	return f.score, 1, nil
}

// fakeLedger returns a fixed owned-shard set.
type fakeLedger struct {
	owned []int
}

func (f fakeLedger) OwnedShards(_ context.Context, _ string) ([]int, error) {
	return f.owned, nil
}

func serve(t *testing.T, headers map[string]string, gates ...gate.Gate) *httptest.ResponseRecorder {
	t.Helper()

	r := gin.New()
	r.GET("/protected", gate.Chain(gates...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "identity": gate.FromContext(c).PayerIdentity})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	return m
}

func TestChainFailFast(t *testing.T) {
	first := &spyGate{name: "first", rejection: &gate.Rejection{
		Status:  http.StatusPaymentRequired,
		Payload: gin.H{"error": "Payment Required"},
	}}
	second := &spyGate{name: "second"}

	w := serve(t, nil, first, second)

	if w.Code != http.StatusPaymentRequired {
		t.Errorf("status = %d, want 402", w.Code)
	}
	if first.calls != 1 {
		t.Errorf("first gate calls = %d, want 1", first.calls)
	}
	if second.calls != 0 {
		t.Errorf("second gate ran %d times after first rejected, want 0", second.calls)
	}
}

func TestChainAllPass(t *testing.T) {
	first := &spyGate{name: "first"}
	second := &spyGate{name: "second"}

	w := serve(t, nil, first, second)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Errorf("calls = %d, %d, want 1 and 1", first.calls, second.calls)
	}
}

func TestIdentityGate(t *testing.T) {
	w := serve(t, nil, gate.Identity{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing header: status = %d, want 400", w.Code)
	}

	w = serve(t, map[string]string{"X-Agent-Address": "0xagent"}, gate.Identity{})
	if w.Code != http.StatusOK {
		t.Fatalf("with header: status = %d, want 200", w.Code)
	}
	if got := body(t, w)["identity"]; got != "0xagent" {
		t.Errorf("identity recorded = %v, want 0xagent", got)
	}
}

func TestTrustGateBoundary(t *testing.T) {
	const min = 10_000_000

	cases := []struct {
		name       string
		score      int64
		wantStatus int
	}{
		{"one below threshold", 9_999_999, http.StatusForbidden},
		{"exactly at threshold", 10_000_000, http.StatusOK},
		{"above threshold", 15_000_000, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &gate.Trust{Provider: fakeReputation{score: tc.score}, MinScore: min}
			w := serve(t, map[string]string{"X-Agent-Address": "0xagent"}, g)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusForbidden {
				m := body(t, w)
				if m["required"] != float64(10) {
					t.Errorf("required = %v, want 10", m["required"])
				}
				if m["current"] == nil {
					t.Error("current score missing from rejection")
				}
			}
		})
	}
}

func TestTrustGateMissingIdentity(t *testing.T) {
	g := &gate.Trust{Provider: fakeReputation{score: 15_000_000}, MinScore: 10_000_000}
	w := serve(t, nil, g)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSpellGateCaseInsensitive(t *testing.T) {
	g := &gate.Spell{Secret: "0xABC"}

	w := serve(t, map[string]string{"X-Magic-Spell": "0xabc"}, g)
	if w.Code != http.StatusOK {
		t.Errorf("lowercased spell: status = %d, want 200", w.Code)
	}

	w = serve(t, map[string]string{"X-Magic-Spell": "0xab"}, g)
	if w.Code != http.StatusForbidden {
		t.Errorf("prefix of spell: status = %d, want 403", w.Code)
	}
}

func TestSpellGateDoesNotLeakSecret(t *testing.T) {
	g := &gate.Spell{Secret: "0xDEADBEEF"}

	for _, headers := range []map[string]string{
		nil,
		{"X-Magic-Spell": "wrong"},
	} {
		w := serve(t, headers, g)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
		if strings.Contains(strings.ToLower(w.Body.String()), "0xdeadbeef") {
			t.Errorf("rejection body leaks the secret: %s", w.Body.String())
		}
	}
}

func TestOwnershipGate(t *testing.T) {
	g := &gate.Ownership{Ledger: fakeLedger{owned: []int{1, 2, 3}}, RequiredShards: []int{1, 2, 3, 4}}
	w := serve(t, map[string]string{"X-Agent-Address": "0xagent"}, g)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	m := body(t, w)
	missing, ok := m["missing"].([]interface{})
	if !ok || len(missing) != 1 || missing[0] != float64(4) {
		t.Errorf("missing = %v, want [4]", m["missing"])
	}
}

func TestOwnershipGateSatisfied(t *testing.T) {
	g := &gate.Ownership{Ledger: fakeLedger{owned: []int{1, 2, 3, 4, 5}}, RequiredShards: []int{1, 2, 3, 4}}
	w := serve(t, map[string]string{"X-Agent-Address": "0xagent"}, g)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
