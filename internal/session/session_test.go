package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"librarybot/internal/models"
)

func TestManager_LoginAndGet(t *testing.T) {
	m := NewManager()

	assert.Nil(t, m.Get(1), "no session before login")

	m.Login(1, models.Member{Username: "alice", Role: models.RoleMember})

	sess := m.Get(1)
	assert.NotNil(t, sess)
	assert.Equal(t, "alice", sess.Member.Username)
	assert.False(t, sess.Member.IsAdmin())

	assert.Nil(t, m.Get(2), "sessions are per chat")
}

func TestManager_LoginReplaces(t *testing.T) {
	m := NewManager()

	m.Login(1, models.Member{Username: "alice", Role: models.RoleMember})
	m.Login(1, models.Member{Username: "seldio", Role: models.RoleAdmin})

	sess := m.Get(1)
	assert.Equal(t, "seldio", sess.Member.Username)
	assert.True(t, sess.Member.IsAdmin())
}

func TestManager_Logout(t *testing.T) {
	m := NewManager()

	m.Login(1, models.Member{Username: "alice", Role: models.RoleMember})

	assert.True(t, m.Logout(1))
	assert.Nil(t, m.Get(1), "session cleared after logout")
	assert.False(t, m.Logout(1), "second logout is a no-op")
}
