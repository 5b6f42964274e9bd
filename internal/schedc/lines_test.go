package schedc

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSortKey_IRSOrder(t *testing.T) {
	codes := []string{"27b", "16b", "9", "24a", "16a", "1", "24b", "18", "2", "10"}
	sort.Slice(codes, func(i, j int) bool {
		return LessLine(codes[i], codes[j])
	})
	assert.Equal(t, []string{"1", "2", "9", "10", "16a", "16b", "18", "24a", "24b", "27b"}, codes)
}

func TestLineSortKey_EdgeCases(t *testing.T) {
	t.Run("suffix rank: none before a before b", func(t *testing.T) {
		assert.True(t, LessLine("16", "16a"))
		assert.True(t, LessLine("16a", "16b"))
		assert.False(t, LessLine("16b", "16a"))
	})

	t.Run("suffix is case insensitive", func(t *testing.T) {
		assert.Equal(t, LineSortKey("16a"), LineSortKey("16A"))
	})

	t.Run("unparseable sorts after every valid line", func(t *testing.T) {
		for _, code := range []string{"abc", "16ab", "a16", "0"} {
			assert.True(t, LessLine("27b", code), code)
			assert.True(t, LessLine(code, ""), code)
		}
	})

	t.Run("blank sorts last of all", func(t *testing.T) {
		assert.True(t, LessLine("27b", ""))
		assert.True(t, LessLine("abc", ""))
		assert.False(t, LessLine("", "abc"))
	})
}

func TestPartForLine(t *testing.T) {
	assert.Equal(t, PartI, PartForLine("1"))
	assert.Equal(t, PartI, PartForLine("2"))
	assert.Equal(t, PartII, PartForLine("8"))
	assert.Equal(t, PartII, PartForLine("16a"))
	assert.Equal(t, PartII, PartForLine("27b"))
	assert.Equal(t, PartNon, PartForLine(""))
	assert.Equal(t, PartNon, PartForLine("abc"))
	assert.Equal(t, PartNon, PartForLine("30"))
}

func TestBreakdownPart(t *testing.T) {
	// Other Expenses totals stay in Part II; the detail prints in Part V.
	assert.Equal(t, PartV, BreakdownPart("27b"))
	assert.Equal(t, PartII, PartForLine("27b"))
	assert.Equal(t, PartII, BreakdownPart("18"))
	assert.Equal(t, PartI, BreakdownPart("1"))
}

func TestEffectiveLine(t *testing.T) {
	assert.Equal(t, "24b", EffectiveLine("24b", "24a"))
	assert.Equal(t, "24a", EffectiveLine("", "24a"))
	assert.Equal(t, "", EffectiveLine("", ""))
}

func TestLineLabel(t *testing.T) {
	assert.Equal(t, "Office Expense", LineLabel("18"))
	assert.Equal(t, "Travel & Meals: Deductible Meals", LineLabel("24b"))
	assert.Equal(t, "Other", LineLabel("99"))
}
