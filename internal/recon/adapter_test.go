package recon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdapt_LowercaseKeysTakePriority(t *testing.T) {
	got := adapt(map[string]any{
		"id":        float64(7),
		"ID":        "ignored",
		"eventname": "lower",
		"EventName": "upper",
		"eventlink": "lower.example",
		"eventdate": "2024-09-01",
	})

	assert.Equal(t, "7", got.ID)
	assert.Equal(t, "lower", got.Name)
	assert.Equal(t, "lower.example", got.Link)
	assert.Equal(t, "2024-09-01", got.Date)
}

func TestAdapt_FallsBackToUppercaseKeys(t *testing.T) {
	got := adapt(map[string]any{
		"ID":        "abc",
		"EventName": "Upper Only",
		"EventLink": "upper.example",
		"EventDate": "2024-10-01",
	})

	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, "Upper Only", got.Name)
	assert.Equal(t, "upper.example", got.Link)
	assert.Equal(t, "2024-10-01", got.Date)
}

func TestAdapt_Placeholders(t *testing.T) {
	got := adapt(map[string]any{})

	assert.Equal(t, "", got.ID)
	assert.Equal(t, "-", got.Name)
	assert.Equal(t, "", got.Link)
	assert.Equal(t, "-", got.Date)
}

func TestAdapt_StripsHTMLFromNames(t *testing.T) {
	got := adapt(map[string]any{
		"eventname": " <script>alert(1)</script>Foo Fest ",
		"eventlink": "foo.example",
	})

	assert.Equal(t, "Foo Fest", got.Name)
}
