package lib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailMsg(t *testing.T) {
	msg, err := NewMailMsg(&SendMailInput{
		From:     "noreply@taskhub.dev",
		FromName: "Taskhub",
		To:       []string{"ada@example.com"},
		Subject:  "You were added to Platform",
		Body:     "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"You were added to Platform"}, msg.GetGenHeader("Subject"))
	assert.Len(t, msg.GetToString(), 1)
	assert.Contains(t, msg.GetToString()[0], "ada@example.com")

	_, err = NewMailMsg(&SendMailInput{From: "not an address", To: []string{"ada@example.com"}})
	assert.Error(t, err)
}
