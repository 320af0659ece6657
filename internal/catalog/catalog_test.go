package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/guidance/internal/model"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestDefaultCatalogKnownTags(t *testing.T) {
	c := mustDefault(t)

	want := []string{
		"Tantrums", "Sleep Routines", "Eating Habits", "Screen Time",
		"Separation Anxiety", "Potty Training", "Social Skills",
		"Behaviour Management", "Focus and Attention", "Homework Resistance",
		"Sibling Rivalry", "Morning Routines",
	}
	if diff := cmp.Diff(want, c.KnownTags()); diff != "" {
		t.Errorf("KnownTags() mismatch (-want +got):\n%s", diff)
	}
}

func TestStepsEveryKnownTagHasFiveNumberedSteps(t *testing.T) {
	c := mustDefault(t)

	for _, tag := range c.KnownTags() {
		for _, approach := range []model.Approach{model.ApproachCBTPCIT, model.ApproachAlternative} {
			steps := c.Steps(tag, approach)
			require.Len(t, steps, StepsPerList, "%s/%s", tag, approach)
			for i, s := range steps {
				assert.Equal(t, i+1, s.Number)
				assert.Equal(t, approach, s.Approach)
				assert.NotEmpty(t, s.Title)
			}
		}
	}
}

func TestStepsFallbacks(t *testing.T) {
	c := mustDefault(t)

	t.Run("unknown tag uses general list", func(t *testing.T) {
		got := c.Steps("Picky about socks", model.ApproachCBTPCIT)
		require.Len(t, got, StepsPerList)
		assert.Equal(t, "Name the struggle", got[0].Title)
		assert.False(t, c.HasDedicatedSteps("Picky about socks", model.ApproachCBTPCIT))
	})

	t.Run("alternative only covers tantrums and sleep", func(t *testing.T) {
		assert.True(t, c.HasDedicatedSteps("Tantrums", model.ApproachAlternative))
		assert.True(t, c.HasDedicatedSteps("Sleep Routines", model.ApproachAlternative))
		assert.False(t, c.HasDedicatedSteps("Screen Time", model.ApproachAlternative))

		general := c.Steps("Unknown", model.ApproachAlternative)
		assert.Equal(t, general, c.Steps("Screen Time", model.ApproachAlternative))
	})

	t.Run("tag match is exact", func(t *testing.T) {
		assert.Equal(t,
			c.Steps("Unknown", model.ApproachCBTPCIT),
			c.Steps("tantrums", model.ApproachCBTPCIT))
	})

	t.Run("unknown approach", func(t *testing.T) {
		assert.Nil(t, c.Steps("Tantrums", model.Approach("Hypnosis")))
	})
}

func TestStepsIsPureAndReturnsCopies(t *testing.T) {
	c := mustDefault(t)

	first := c.Steps("Tantrums", model.ApproachCBTPCIT)
	first[0].Title = "changed"
	second := c.Steps("Tantrums", model.ApproachCBTPCIT)

	assert.Equal(t, "Spot the triggers", second[0].Title)
	assert.Equal(t, second, c.Steps("Tantrums", model.ApproachCBTPCIT))
}

func TestLoadValidation(t *testing.T) {
	five := func(prefix string) string {
		var b strings.Builder
		for i := 1; i <= 5; i++ {
			b.WriteString("      - title: " + prefix + string(rune('0'+i)) + "\n")
		}
		return b.String()
	}

	valid := "approaches:\n" +
		"  - name: CBT+PCIT\n    general:\n" + five("c") +
		"  - name: Alternative\n    general:\n" + five("a")

	t.Run("minimal document loads", func(t *testing.T) {
		c, err := Load(strings.NewReader(valid))
		require.NoError(t, err)
		assert.Empty(t, c.KnownTags())
		assert.Equal(t, "c1", c.Steps("x", model.ApproachCBTPCIT)[0].Title)
	})

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "missing approach",
			doc:  "approaches:\n  - name: CBT+PCIT\n    general:\n" + five("c"),
		},
		{
			name: "unknown approach",
			doc:  valid + "  - name: Hypnosis\n    general:\n" + five("h"),
		},
		{
			name: "short list",
			doc: "approaches:\n" +
				"  - name: CBT+PCIT\n    general:\n      - title: only\n" +
				"  - name: Alternative\n    general:\n" + five("a"),
		},
		{
			name: "unknown field",
			doc:  valid + "extra: true\n",
		},
		{
			name: "blank title entry",
			doc:  valid + "titles:\n  - tag: Tantrums\n    title: \"\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}
