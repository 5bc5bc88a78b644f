package roomgrant_test

import (
	"testing"
	"time"

	"github.com/kelaslive/kelaslive-backend/internal/model"
	"github.com/kelaslive/kelaslive-backend/internal/roomgrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantFor(t *testing.T) {
	tests := []struct {
		name        string
		role        model.Role
		wantCreate  bool
		wantSources []roomgrant.TrackSource
	}{
		{
			name:       "teacher may create and share screen",
			role:       model.RoleTeacher,
			wantCreate: true,
			wantSources: []roomgrant.TrackSource{
				roomgrant.SourceCamera, roomgrant.SourceMicrophone,
				roomgrant.SourceScreenShare, roomgrant.SourceScreenShareAudio,
			},
		},
		{
			name:        "student limited to camera and microphone",
			role:        model.RoleStudent,
			wantCreate:  false,
			wantSources: []roomgrant.TrackSource{roomgrant.SourceCamera, roomgrant.SourceMicrophone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := roomgrant.GrantFor(tt.role, "ROOM_R")
			require.NoError(t, err)

			assert.Equal(t, "ROOM_R", g.Room)
			assert.True(t, g.RoomJoin)
			assert.Equal(t, tt.wantCreate, g.RoomCreate)
			require.NotNil(t, g.CanPublish)
			require.NotNil(t, g.CanSubscribe)
			require.NotNil(t, g.CanPublishData)
			assert.True(t, *g.CanPublish)
			assert.True(t, *g.CanSubscribe)
			assert.True(t, *g.CanPublishData)
			assert.Equal(t, tt.wantSources, g.CanPublishSources)
		})
	}
}

func TestGrantFor_UnknownRole(t *testing.T) {
	_, err := roomgrant.GrantFor(model.Role(0), "ROOM_R")
	assert.Error(t, err)
}

func TestSigner_IssueAndParse(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	signer := roomgrant.NewSigner("api-key", "api-secret", 0).WithClock(func() time.Time { return now })

	token, err := signer.Issue("teacher-tab-1", "Guru Utama", "ROOM_R", model.RoleTeacher)
	require.NoError(t, err)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "api-key", claims.Issuer)
	assert.Equal(t, "teacher-tab-1", claims.Subject)
	assert.Equal(t, "Guru Utama", claims.Name)
	assert.JSONEq(t, `{"role":"TEACHER"}`, claims.Metadata)
	assert.WithinDuration(t, now.Add(roomgrant.DefaultTTL), claims.ExpiresAt.Time, 0)
	require.NotNil(t, claims.Video)
	assert.True(t, claims.Video.CanPublishSource(roomgrant.SourceScreenShare))

	studentToken, err := signer.Issue("student-tab-1", "Siswa Satu", "ROOM_R", model.RoleStudent)
	require.NoError(t, err)
	studentClaims, err := signer.Parse(studentToken)
	require.NoError(t, err)
	assert.False(t, studentClaims.Video.CanPublishSource(roomgrant.SourceScreenShare))
	assert.False(t, studentClaims.Video.RoomCreate)
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	token, err := roomgrant.NewSigner("api-key", "secret-a", time.Hour).Issue("id", "n", "ROOM_R", model.RoleStudent)
	require.NoError(t, err)

	_, err = roomgrant.NewSigner("api-key", "secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestSigner_RequiresIdentityAndRoom(t *testing.T) {
	signer := roomgrant.NewSigner("k", "s", time.Hour)
	_, err := signer.Issue("", "n", "ROOM_R", model.RoleStudent)
	assert.Error(t, err)
	_, err = signer.Issue("id", "n", "", model.RoleStudent)
	assert.Error(t, err)
}
