package notification

import (
	"testing"

	"vecino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryTypeHasTemplate(t *testing.T) {
	for _, typ := range models.AllNotificationTypes {
		title, body, ok := RenderTemplate(typ, nil)
		require.True(t, ok, "type %s has no template", typ)
		assert.NotEmpty(t, title, "type %s", typ)
		assert.NotEmpty(t, body, "type %s", typ)
	}
}

func TestRenderTemplateUnknownType(t *testing.T) {
	_, _, ok := RenderTemplate(models.NotificationType("bogus"), nil)
	assert.False(t, ok)
}

func TestRenderTemplateSubstitutesData(t *testing.T) {
	title, body, ok := RenderTemplate(models.TypePaymentDue, map[string]string{
		"amount":  "$150.00",
		"dueDate": "2026-04-01",
	})
	require.True(t, ok)
	assert.Equal(t, "Payment due", title)
	assert.Contains(t, body, "$150.00")
	assert.Contains(t, body, "2026-04-01")
}

func TestRenderTemplateFallbacks(t *testing.T) {
	_, body, ok := RenderTemplate(models.TypePaymentDue, nil)
	require.True(t, ok)
	assert.Contains(t, body, "the monthly fee")
}

func TestRenderTemplateAnnouncementUsesData(t *testing.T) {
	title, body, ok := RenderTemplate(models.TypeSystemAnnouncement, map[string]string{
		"title":   "Pool maintenance",
		"message": "The pool closes Friday for cleaning.",
	})
	require.True(t, ok)
	assert.Equal(t, "Pool maintenance", title)
	assert.Equal(t, "The pool closes Friday for cleaning.", body)
}
