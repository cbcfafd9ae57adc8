package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type recordingStream struct {
	groupID uuid.UUID
	userID  uuid.UUID
	err     error
}

func (s *recordingStream) ServeWS(w http.ResponseWriter, r *http.Request, _ websocket.Upgrader, groupID, userID uuid.UUID) error {
	s.groupID = groupID
	s.userID = userID
	return s.err
}

func TestGroupStreamAttachesMember(t *testing.T) {
	groupID := uuid.New()
	identity := memberIdentity(groupID)
	stream := &recordingStream{}

	req := newRequest(http.MethodGet, "/stream", "", map[string]string{"groupId": groupID.String()}, &identity)
	GroupStream(stream, websocket.Upgrader{}, testLogger())(httptest.NewRecorder(), req)

	if stream.groupID != groupID || stream.userID != identity.UserID {
		t.Fatalf("unexpected attachment group=%s user=%s", stream.groupID, stream.userID)
	}
}

func TestGroupStreamLogsUpgradeFailure(t *testing.T) {
	groupID := uuid.New()
	identity := memberIdentity(groupID)
	stream := &recordingStream{err: errors.New("bad handshake")}

	req := newRequest(http.MethodGet, "/stream", "", map[string]string{"groupId": groupID.String()}, &identity)
	resp := httptest.NewRecorder()
	GroupStream(stream, websocket.Upgrader{}, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("controller must not write after a failed upgrade, got %d", resp.Code)
	}
}

func TestGroupStreamRequiresIdentity(t *testing.T) {
	stream := &recordingStream{}
	req := newRequest(http.MethodGet, "/stream", "", map[string]string{"groupId": uuid.NewString()}, nil)
	resp := httptest.NewRecorder()
	GroupStream(stream, websocket.Upgrader{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if stream.groupID != uuid.Nil {
		t.Fatal("stream should not be attached")
	}
}
