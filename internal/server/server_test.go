package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/oduya/paygo/internal/protocol"
)

const testKeyHex = "37373737373737373737373737373737"

func newTestServer() *Server {
	return &Server{
		config:      &Config{},
		activeConns: make(map[string]*websocket.Conn),
	}
}

func postIssue(t *testing.T, ts *httptest.Server, req issueRequest) (*http.Response, []byte) {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(ts.URL+"/v1/keycodes", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/keycodes: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, buf.Bytes()
}

func TestIssueKeycodeEndpoint(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Routes())
	defer ts.Close()

	resp, body := postIssue(t, ts, issueRequest{
		Family:    "full",
		Operation: "add-credit",
		DeviceID:  72,
		Hours:     168,
		Key:       testKeyHex,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var issued issueResponse
	if err := json.Unmarshal(body, &issued); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !strings.HasPrefix(issued.Token, "*") || !strings.HasSuffix(issued.Token, "#") {
		t.Errorf("token %q is not framed as a full keycode", issued.Token)
	}
	if issued.MessageID < 72 {
		t.Errorf("message id %d went backwards from requested 72", issued.MessageID)
	}
	if issued.Type != protocol.FullAddCredit.String() {
		t.Errorf("type = %q, want %q", issued.Type, protocol.FullAddCredit.String())
	}
}

func TestIssueSmallKeycode(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Routes())
	defer ts.Close()

	resp, body := postIssue(t, ts, issueRequest{
		Family:    "small",
		Operation: "set-credit",
		DeviceID:  21,
		Days:      30,
		Key:       testKeyHex,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var issued issueResponse
	if err := json.Unmarshal(body, &issued); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(issued.Token) != 16 {
		t.Errorf("small token %q has length %d, want 16", issued.Token, len(issued.Token))
	}
	if strings.Trim(issued.Token, "12345") != "" {
		t.Errorf("small token %q contains characters outside 1-5", issued.Token)
	}
}

func TestFactoryOperationNeedsNoKey(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Routes())
	defer ts.Close()

	resp, body := postIssue(t, ts, issueRequest{
		Family:    "full",
		Operation: "factory-display-id",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}
}

func TestIssueRejections(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Routes())
	defer ts.Close()

	cases := []struct {
		name string
		req  issueRequest
	}{
		{"missing key", issueRequest{Family: "full", Operation: "add-credit", Hours: 1}},
		{"short key", issueRequest{Family: "full", Operation: "add-credit", Hours: 1, Key: "abcd"}},
		{"non-hex key", issueRequest{Family: "full", Operation: "add-credit", Hours: 1, Key: strings.Repeat("zz", 16)}},
		{"unknown operation", issueRequest{Family: "full", Operation: "frobnicate", Key: testKeyHex}},
		{"unknown family", issueRequest{Family: "medium", Operation: "add-credit", Key: testKeyHex}},
		{"hours out of range", issueRequest{Family: "full", Operation: "add-credit", Hours: 100000, Key: testKeyHex}},
		{"days out of range", issueRequest{Family: "small", Operation: "add-credit", Days: 406, Key: testKeyHex}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := postIssue(t, ts, tc.req)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422; body %s", resp.StatusCode, body)
			}
			var errResp errorResponse
			if err := json.Unmarshal(body, &errResp); err != nil {
				t.Fatalf("unmarshal error response: %v", err)
			}
			if errResp.Error == "" {
				t.Error("error response has empty message")
			}
			if strings.Contains(errResp.Error, testKeyHex) {
				t.Error("error response echoes key material")
			}
		})
	}
}

func TestIssueBadJSON(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Routes())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/v1/keycodes", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIssueMethodNotAllowed(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/keycodes")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := httptest.NewUnstartedServer(newTestServer().Routes())
	ts.Config.ConnState = logConnState
	ts.Start()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/healthz")
	if err != nil {
		t.Fatalf("GET /v1/healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestStreamIssuesKeycodes(t *testing.T) {
	srv := newTestServer()
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// A batch: two valid requests and one invalid sandwiched between
	requests := []issueRequest{
		{Family: "full", Operation: "set-credit", DeviceID: 5, Hours: 500, Key: testKeyHex},
		{Family: "full", Operation: "add-credit", DeviceID: 6, Key: ""},
		{Family: "small", Operation: "unlock", DeviceID: 9, Key: testKeyHex},
	}
	for _, req := range requests {
		if err := conn.WriteJSON(req); err != nil {
			t.Fatalf("write request: %v", err)
		}
	}

	var first issueResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read first response: %v", err)
	}
	if !strings.HasPrefix(first.Token, "*") {
		t.Errorf("first token %q is not a full keycode", first.Token)
	}

	var second errorResponse
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("read second response: %v", err)
	}
	if second.Error == "" {
		t.Error("invalid request did not produce an error response")
	}

	var third issueResponse
	if err := conn.ReadJSON(&third); err != nil {
		t.Fatalf("read third response: %v", err)
	}
	if len(third.Token) != 16 {
		t.Errorf("third token %q has length %d, want 16", third.Token, len(third.Token))
	}
}

func TestBuildMessageOperationMap(t *testing.T) {
	cases := []struct {
		family, op string
		wantType   protocol.MessageType
		wellKnown  bool
	}{
		{"full", "add-credit", protocol.FullAddCredit, false},
		{"full", "set-credit", protocol.FullSetCredit, false},
		{"full", "unlock", protocol.FullSetCredit, false},
		{"full", "wipe-state", protocol.FullWipeState, false},
		{"full", "factory-allow-test", protocol.FullFactoryAllowTest, true},
		{"full", "factory-oqc-test", protocol.FullFactoryOQCTest, true},
		{"full", "factory-display-id", protocol.FullFactoryDisplayID, true},
		{"small", "add-credit", protocol.SmallAddCredit, false},
		{"small", "set-credit", protocol.SmallSetCredit, false},
		{"small", "update-credit", protocol.SmallUpdateCredit, false},
		{"small", "extended-set-credit", protocol.SmallExtendedSetCredit, false},
		{"small", "unlock", protocol.SmallSetCredit, false},
		{"small", "lock", protocol.SmallSetCredit, false},
		{"small", "wipe-restricted-flag", protocol.SmallCustomCommand, false},
		{"small", "maintenance-wipe", protocol.SmallMaintenanceTest, false},
		{"small", "test-short", protocol.SmallMaintenanceTest, true},
		{"small", "test-oqc", protocol.SmallMaintenanceTest, true},
	}

	for _, tc := range cases {
		t.Run(tc.family+"/"+tc.op, func(t *testing.T) {
			req := issueRequest{Family: tc.family, Operation: tc.op, Days: 30, Hours: 10, Minutes: 30}
			msg, key, err := buildMessage(req)
			if err != nil {
				t.Fatalf("buildMessage: %v", err)
			}
			if msg.Type != tc.wantType {
				t.Errorf("type = %v, want %v", msg.Type, tc.wantType)
			}
			if (key != nil) != tc.wellKnown {
				t.Errorf("well-known key presence = %v, want %v", key != nil, tc.wellKnown)
			}
		})
	}
}
