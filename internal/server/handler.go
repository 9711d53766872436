package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oduya/paygo/internal/config"
	"github.com/oduya/paygo/internal/keycode"
	"github.com/oduya/paygo/internal/logging"
	"github.com/oduya/paygo/internal/message"
	"github.com/oduya/paygo/internal/protocol"
)

// issueRequest is the shared request schema for the HTTP and WebSocket
// surfaces. Exactly one value field applies per operation; the rest are
// ignored. Key is the device secret as 32 hex characters, omitted for
// factory and test operations.
type issueRequest struct {
	Family    string `json:"family"`    // "full" or "small"
	Operation string `json:"operation"` // e.g. "add-credit"
	DeviceID  uint32 `json:"device_id"`

	Hours   uint32 `json:"hours,omitempty"`
	Days    uint32 `json:"days,omitempty"`
	Flags   uint8  `json:"flags,omitempty"`
	Minutes uint32 `json:"minutes,omitempty"`

	Key string `json:"key,omitempty"`

	// Retries overrides the collision retry budget when positive
	Retries int `json:"retries,omitempty"`
}

// issueResponse is returned for a successfully issued keycode
type issueResponse struct {
	Token     string `json:"token"`
	MessageID uint32 `json:"message_id"`
	Type      string `json:"type"`
	Digits    int    `json:"digits"`
}

// errorResponse is returned when a request cannot be served
type errorResponse struct {
	Error string `json:"error"`
}

// buildMessage resolves a request into an encodable message and the key it
// authenticates with. Factory and test operations carry their well-known
// keys; everything else requires one in the request.
func buildMessage(req issueRequest) (message.Message, []byte, error) {
	op := req.Family + "/" + req.Operation

	switch op {
	case "full/add-credit":
		return message.FullAddCredit(req.DeviceID, req.Hours), nil, nil
	case "full/set-credit":
		return message.FullSetCredit(req.DeviceID, req.Hours), nil, nil
	case "full/unlock":
		return message.FullUnlock(req.DeviceID), nil, nil
	case "full/wipe-state":
		return message.FullWipeState(req.DeviceID, message.WipeFlags(req.Flags)), nil, nil
	case "full/factory-allow-test":
		return message.FactoryAllowTest(), message.FactoryKey, nil
	case "full/factory-oqc-test":
		return message.FactoryOQCTest(req.Minutes), message.FactoryKey, nil
	case "full/factory-display-id":
		return message.FactoryDisplayID(), message.FactoryKey, nil

	case "small/add-credit":
		m, err := message.SmallAddCredit(req.DeviceID, req.Days)
		return m, nil, err
	case "small/set-credit":
		m, err := message.SmallSetCredit(req.DeviceID, req.Days)
		return m, nil, err
	case "small/update-credit":
		m, err := message.SmallUpdateCredit(req.DeviceID, req.Days)
		return m, nil, err
	case "small/extended-set-credit":
		m, err := message.SmallExtendedSetCredit(req.DeviceID, req.Days)
		return m, nil, err
	case "small/unlock":
		return message.SmallUnlock(req.DeviceID), nil, nil
	case "small/lock":
		return message.SmallLock(req.DeviceID), nil, nil
	case "small/wipe-restricted-flag":
		return message.SmallWipeRestrictedFlag(req.DeviceID), nil, nil
	case "small/maintenance-wipe":
		if req.Flags > uint8(message.MaintenanceWipeIDsAll) {
			return message.Message{}, nil, fmt.Errorf("unknown maintenance wipe target %d", req.Flags)
		}
		return message.SmallMaintenance(message.MaintenanceType(req.Flags)), nil, nil
	case "small/test-short":
		return message.SmallTest(message.TestShort), message.TestKey, nil
	case "small/test-oqc":
		return message.SmallTest(message.TestOQC), message.TestKey, nil
	}

	return message.Message{}, nil, fmt.Errorf("unknown operation %q", op)
}

// issue executes an issue request end to end: build, encode with retry,
// self-verify. The decoded key buffer is zeroed before returning.
func issue(req issueRequest) (issueResponse, error) {
	msg, wellKnownKey, err := buildMessage(req)
	if err != nil {
		return issueResponse{}, err
	}

	key := wellKnownKey
	if key == nil {
		if req.Key == "" {
			return issueResponse{}, fmt.Errorf("operation %s/%s requires a key", req.Family, req.Operation)
		}
		if len(req.Key) != 2*config.KeyLen {
			return issueResponse{}, fmt.Errorf("key must be %d hex characters", 2*config.KeyLen)
		}
		decoded, err := hex.DecodeString(req.Key)
		if err != nil {
			return issueResponse{}, fmt.Errorf("key is not valid hex")
		}
		key = decoded
		defer func() {
			for i := range decoded {
				decoded[i] = 0
			}
		}()
	}

	retries := req.Retries
	if retries <= 0 {
		retries = message.DefaultCollisionRetries
	}

	token, usedID, err := message.EncodeWithRetry(msg, key, retries)
	if err != nil {
		return issueResponse{}, err
	}

	// A token that fails its own checksum must never leave the server.
	if _, err := keycode.Verify(msg.Type, token); err != nil {
		return issueResponse{}, fmt.Errorf("issued token failed self-verification: %w", err)
	}

	logging.LogKeycodeIssued(msg.Type.String(), usedID, token)

	return issueResponse{
		Token:     token,
		MessageID: usedID,
		Type:      msg.Type.String(),
		Digits:    protocol.Lookup(msg.Type).PayloadDigits,
	}, nil
}

// handleIssueKeycode serves POST /v1/keycodes
func (s *Server) handleIssueKeycode(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	logging.LogHTTPRequest(remoteAddr, r.Method, r.URL.Path, 0)

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	resp, err := issue(req)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealth serves GET /v1/healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
