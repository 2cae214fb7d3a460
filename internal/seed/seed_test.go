package seed

import (
	"fmt"
	"testing"

	"soundbite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTestUsers(n int) []*models.User {
	users := make([]*models.User, n)
	for i := range users {
		users[i] = &models.User{Handle: fmt.Sprintf("user%d", i)}
	}
	return users
}

func TestPickUsersDistinct(t *testing.T) {
	users := seedTestUsers(10)

	picked := pickUsers(users, 5)
	require.Len(t, picked, 5)

	seen := make(map[string]struct{}, len(picked))
	for _, u := range picked {
		_, dup := seen[u.Handle]
		assert.False(t, dup, "duplicate user %s", u.Handle)
		seen[u.Handle] = struct{}{}
	}
}

func TestPickUsersClampsToPopulation(t *testing.T) {
	users := seedTestUsers(3)
	picked := pickUsers(users, 10)
	assert.Len(t, picked, 3)
}
