package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFramework_CanonicalShape(t *testing.T) {
	fw, err := DefaultFramework()
	require.NoError(t, err)

	assert.Len(t, fw.Chapters, 4)
	assert.Len(t, fw.Dimensions, 12)

	perChapter := map[string]int{}
	for _, d := range fw.Dimensions {
		perChapter[d.Chapter]++
		assert.Len(t, d.SubIndicators, 5, "dimension %s", d.Code)
		assert.Equal(t, 25, d.ExpectedQuestionCount(), "dimension %s", d.Code)
		for _, s := range d.SubIndicators {
			assert.Len(t, s.Questions, 5, "sub-indicator %s", s.Code)
		}
	}
	for _, ch := range fw.Chapters {
		assert.Equal(t, 3, perChapter[ch.Code], "chapter %s", ch.Code)
	}

	assert.Equal(t, "ITD", fw.Aliases["IDS"])
}

func TestDefaultFramework_RulesReferenceCatalogQuestions(t *testing.T) {
	fw, err := DefaultFramework()
	require.NoError(t, err)

	catalog := map[string]bool{}
	for _, d := range fw.Dimensions {
		for _, s := range d.SubIndicators {
			for _, q := range s.Questions {
				catalog[q] = true
			}
		}
	}

	require.NotEmpty(t, fw.Rules)
	for _, r := range fw.Rules {
		assert.True(t, catalog[r.QuestionID], "rule for unknown question %s", r.QuestionID)
	}
}

func TestParseFramework_RejectsOpenHierarchy(t *testing.T) {
	content := `
version = "test"

[[chapters]]
code = "GE"
name = "Growth Engine"

[[dimensions]]
code = "STR"
name = "Strategy"
chapter = "ZZ"

  [[dimensions.sub_indicators]]
  code = "STR-1"
  questions = ["STR-1-1"]
`
	_, err := ParseFramework([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chapter")
	assert.Contains(t, err.Error(), "chapter GE has no dimensions")
}
